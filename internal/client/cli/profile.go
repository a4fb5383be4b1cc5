package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/avatar"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
)

// Onboard asks for interests and a major and stores them.
func (a *App) Onboard(ctx context.Context, _ []string) error {
	interests, err := GetChoices(a.reader, "Pick your interests (numbers or names, comma separated)", services.InterestOptions, a.out)
	if err != nil {
		return err
	}
	major, err := GetSimpleText(a.reader, "What's your major?", a.out)
	if err != nil {
		return err
	}

	p, err := a.profiles.CompleteOnboarding(ctx, a.sess, interests, major)
	if err != nil {
		return err
	}
	a.profile = p
	a.println("You're all set! Type 'feed' to start discovering.")
	return nil
}

// SetField updates one scalar profile field.
func (a *App) SetField(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	value := joinArgs(args[1:])

	var m services.ProfileMutation
	switch strings.ToLower(args[0]) {
	case "name":
		m = services.SetName(value)
	case "major":
		m = services.SetMajor(value)
	case "bio":
		m = services.SetBio(value)
	case "gpa":
		m = services.SetGPA(value)
	default:
		return fmt.Errorf("unknown field %q", args[0])
	}
	return a.updateProfile(ctx, m)
}

// SetInterests replaces the interests with a comma-separated list, or asks
// for a selection when no list is given.
func (a *App) SetInterests(ctx context.Context, args []string) error {
	var (
		interests []string
		err       error
	)
	if len(args) == 0 {
		interests, err = GetChoices(a.reader, "Pick your interests", services.InterestOptions, a.out)
		if err != nil {
			return err
		}
	} else {
		for _, s := range strings.Split(joinArgs(args), ",") {
			if s = strings.TrimSpace(s); s != "" {
				interests = append(interests, s)
			}
		}
	}
	return a.updateProfile(ctx, services.SetInterests(interests))
}

// EditSkills edits the skills list.
func (a *App) EditSkills(ctx context.Context, args []string) error {
	return a.editList(ctx, args, services.AppendSkill, services.SetSkill, services.RemoveSkill)
}

// EditExperience edits the experience list.
func (a *App) EditExperience(ctx context.Context, args []string) error {
	return a.editList(ctx, args, services.AppendExperience, services.SetExperience, services.RemoveExperience)
}

func (a *App) editList(
	ctx context.Context,
	args []string,
	appendFn func() services.ProfileMutation,
	setFn func(int, string) services.ProfileMutation,
	removeFn func(int) services.ProfileMutation,
) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "add":
		return a.updateProfile(ctx, appendFn())
	case "set":
		if len(args) < 3 {
			return errUsage
		}
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return a.updateProfile(ctx, setFn(i, joinArgs(args[2:])))
	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return a.updateProfile(ctx, removeFn(i))
	}
	return errUsage
}

// Avatar sets the profile picture from an image file.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	f, err := avatar.FromPath(joinArgs(args))
	if err != nil {
		return err
	}
	p, err := a.profiles.SetAvatarFromFile(ctx, a.sess, f)
	if err != nil {
		return err
	}
	a.profile = p
	a.println("Avatar updated.")
	return nil
}

func (a *App) updateProfile(ctx context.Context, mutations ...services.ProfileMutation) error {
	p, err := a.profiles.Update(ctx, a.sess, mutations...)
	if err != nil {
		return err
	}
	a.profile = p
	a.print(formatProfile(p))
	return nil
}
