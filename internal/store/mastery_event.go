package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var masteryEventColumns = []string{
	"id", "sequence", "timestamp", "profile", "role_key", "skill_key",
	"from_state", "to_state", "trigger", "score", "total",
}

func (r *eventRepo) AppendMasteryEvent(ctx context.Context, data MasteryEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := builder.Insert(MasteryEventsTable.Name).
		Columns(masteryEventColumns[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.Profile, data.RoleKey, data.SkillKey,
			data.FromState, data.ToState, data.Trigger, data.Score, data.Total,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save mastery event: %w", err)
	}
	return nil
}

func (r *eventRepo) MasteryEvents(ctx context.Context, profile, roleKey string, opts QueryOpts) ([]MasteryEvent, error) {
	sel := builder.Select(masteryEventColumns...).
		From(entsql.Table(MasteryEventsTable.Name)).
		Where(entsql.And(entsql.EQ("profile", profile), entsql.EQ("role_key", roleKey))).
		OrderBy("sequence")
	applyQueryOpts(sel, opts, "timestamp")

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery events: %w", err)
	}
	defer rows.Close()

	var out []MasteryEvent
	for rows.Next() {
		var e MasteryEvent
		if err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.Profile, &e.RoleKey, &e.SkillKey,
			&e.FromState, &e.ToState, &e.Trigger, &e.Score, &e.Total,
		); err != nil {
			return nil, fmt.Errorf("scan mastery event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
