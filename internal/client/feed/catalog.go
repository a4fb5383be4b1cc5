package feed

import "github.com/dmitrijs2005/unicampus/internal/client/models"

// Catalog returns the built-in discovery items. Each call returns fresh
// values so callers may modify them.
func Catalog() models.Items {
	return models.Items{
		models.EventItem{Card: models.Card{
			ID:          "1",
			Type:        models.ItemTypeEvent,
			Title:       "Hack McWICS 2026",
			Description: "Come apply your coding skills!",
			Image:       "https://images.unsplash.com/photo-1517245386807-bb43f82c33c4?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Tech", "Hackathon"},
		}},
		models.PartnerItem{Card: models.Card{
			ID:          "2",
			Type:        models.ItemTypePartner,
			Title:       "Sarah Desautels",
			Description: "Looking for a study lead for MGCR 341. Coffee is on me!",
			Image:       "https://images.unsplash.com/photo-1544005313-94ddf0286df2?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Management", "Lab Partner"},
		}},
		models.NetworkingItem{Card: models.Card{
			ID:          "n1",
			Type:        models.ItemTypeNetworking,
			Title:       "Google Cloud Canada",
			Description: "Hiring Cloud Engineering Interns for the Montreal office. Open to CS and SoftEng students.",
			Image:       "https://images.unsplash.com/photo-1573164713988-8665fc963095?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Networking", "Internship", "Tech"},
		}, Company: "Google"},
		models.NetworkingItem{Card: models.Card{
			ID:          "n2",
			Type:        models.ItemTypeNetworking,
			Title:       "CIBC",
			Description: "Connect with CIBC professionals in technology, finance, and analytics roles.",
			Image:       "https://images.unsplash.com/photo-1554224154-22dec7ec8818?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Networking", "Finance", "Internship"},
		}, Company: "CIBC"},
		models.NetworkingItem{Card: models.Card{
			ID:          "n3",
			Type:        models.ItemTypeNetworking,
			Title:       "Bombardier",
			Description: "Explore engineering and aerospace career opportunities with Bombardier.",
			Image:       "https://images.unsplash.com/photo-1521791136064-7986c2920216?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Networking", "Engineering", "Full-time"},
		}, Company: "Bombardier"},
		models.ClubItem{Card: models.Card{
			ID:          "3",
			Type:        models.ItemTypeClub,
			Title:       "The McGill Daily",
			Description: "Help us write the stories that shape our campus culture.",
			Image:       "https://images.unsplash.com/photo-1504711434969-e33886168f5c?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Journalism", "Arts"},
		}},
		models.NetworkingItem{Card: models.Card{
			ID:          "n4",
			Type:        models.ItemTypeNetworking,
			Title:       "Matrox",
			Description: "Montreal-based tech company specializing in video, graphics, and embedded systems. Hiring software and hardware interns.",
			Image:       "https://images.unsplash.com/photo-1518770660439-4636190af475?auto=format&fit=crop&q=80&w=800",
			Tags:        []string{"Networking", "Software", "Hardware", "Internship"},
		}, Company: "Matrox"},
	}
}
