package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"romcat/internal/services"
)

// safeFields is the hard allow-list of (entity type, field) pairs that
// overrides and disagreement resolutions may write. The gate runs before
// any SQL is assembled; a field outside this map never reaches the
// database regardless of what an override file contains.
var safeFields = map[string]map[string]string{
	EntityRelease: {
		"title":        "title",
		"alt_title":    "alt_title",
		"release_date": "release_date",
		"game_serial":  "game_serial",
		"genre":        "genre",
		"players":      "players",
		"description":  "description",
	},
	EntityMedia: {
		"media_serial": "media_serial",
		"revision":     "revision",
		// Override files say "status"; the column keeps its longer name.
		"status":      "dump_status",
		"dump_status": "dump_status",
	},
}

// SafeField reports whether field may be written on entityType.
func SafeField(entityType, field string) bool {
	_, ok := safeFields[entityType][field]
	return ok
}

func unsafeFieldErr(entityType, field string) error {
	return services.Wrap(services.ErrUnsafeField, "catalog", "update field",
		fmt.Sprintf("%s.%s is not an overridable field", entityType, field), nil)
}

// UpdateField writes one allow-listed field on one entity. It is the only
// write path used by override application and disagreement resolution.
func (o Ops) UpdateField(ctx context.Context, entityType, entityID, field, value string) error {
	column, ok := safeFields[entityType][field]
	if !ok {
		return unsafeFieldErr(entityType, field)
	}

	var table string
	switch entityType {
	case EntityRelease:
		table = "releases"
	case EntityMedia:
		table = "media"
	}

	var arg any = value
	if column == "players" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return services.Wrap(services.ErrValidation, "catalog", "update field",
				fmt.Sprintf("players value %q is not a number", value), nil)
		}
		arg = n
	}

	res, err := o.q.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = ? WHERE id = ?", table, column),
		arg, timestamp(time.Now()), entityID)
	if err != nil {
		return storeErr("update field", fmt.Sprintf("update %s.%s", table, column), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("update field", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "catalog", "update field",
			fmt.Sprintf("%s %s does not exist", entityType, entityID), nil)
	}
	return nil
}
