// Package models defines the persisted unicampus entities: accounts,
// profiles, discovery items and collaboration requests.
//
// Discovery items form a tagged union. Every variant embeds Card, the fields
// shared by all items; Items decodes a JSON list back into the right variant
// per element.
package models
