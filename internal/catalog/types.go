package catalog

import "encoding/json"

// Version is one game-version record from the upstream catalog.
type Version struct {
	ID                uint64 `json:"id"`
	GameVersionTypeID uint64 `json:"gameVersionTypeID"`
	Name              string `json:"name"`
	Slug              string `json:"slug"`
}

// UnmarshalJSON accepts the version-type reference under both spellings
// the upstream API has used: "gameVersionTypeID" and
// "game_version_type_id".
func (v *Version) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        uint64  `json:"id"`
		TypeID    *uint64 `json:"gameVersionTypeID"`
		TypeIDAlt *uint64 `json:"game_version_type_id"`
		Name      string  `json:"name"`
		Slug      string  `json:"slug"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.ID = raw.ID
	v.Name = raw.Name
	v.Slug = raw.Slug
	switch {
	case raw.TypeID != nil:
		v.GameVersionTypeID = *raw.TypeID
	case raw.TypeIDAlt != nil:
		v.GameVersionTypeID = *raw.TypeIDAlt
	default:
		v.GameVersionTypeID = 0
	}
	return nil
}

// VersionType is one version-type record from the upstream catalog.
type VersionType struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
