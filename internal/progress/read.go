package progress

import (
	"context"
	"sort"
	"strings"

	"github.com/abhisek/skillpath/internal/cache"
	"github.com/abhisek/skillpath/internal/catalog"
	"github.com/abhisek/skillpath/internal/mastery"
	"github.com/abhisek/skillpath/internal/skillgap"
)

// Gap returns the role's current gap.
func (s *Store) Gap(ctx context.Context, role string) (skillgap.Record, bool, error) {
	return cache.Get[skillgap.Record](ctx, s.cache, GapType, gapKey(catalog.Key(role)))
}

// Role returns the role's progress; an untracked role has no skills.
func (s *Store) Role(ctx context.Context, role string) (RoleProgress, error) {
	roleKey := catalog.Key(role)
	rp, _, err := cache.Get[RoleProgress](ctx, s.cache, RoleProgressType, progressKey(roleKey))
	if err != nil {
		return RoleProgress{}, err
	}
	return ensureRole(rp, roleKey), nil
}

// Skill returns one skill's progress.
func (s *Store) Skill(ctx context.Context, role, skill string) (SkillProgress, bool, error) {
	rp, err := s.Role(ctx, role)
	if err != nil {
		return SkillProgress{}, false, err
	}
	p, ok := rp.Skills[catalog.Key(skill)]
	return p, ok, nil
}

// Final returns the role's final mastery record.
func (s *Store) Final(ctx context.Context, role string) (FinalRecord, bool, error) {
	return cache.Get[FinalRecord](ctx, s.cache, FinalType, finalKey(catalog.Key(role)))
}

// Tracker returns every role's progress.
func (s *Store) Tracker(ctx context.Context) (Tracker, error) {
	all, err := cache.List[RoleProgress](ctx, s.cache, RoleProgressType)
	if err != nil {
		return nil, err
	}
	t := make(Tracker, len(all))
	for key, rp := range all {
		t[strings.TrimPrefix(key, "progress/")] = rp.Skills
	}
	return t, nil
}

// Roles returns the keys of roles with a saved gap, sorted.
func (s *Store) Roles(ctx context.Context) ([]string, error) {
	gaps, err := cache.List[skillgap.Record](ctx, s.cache, GapType)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.RoleKey)
	}
	sort.Strings(out)
	return out, nil
}

// View re-derives everything about a role from storage, including the
// gate state.
func (s *Store) View(ctx context.Context, role string) (View, error) {
	roleKey := catalog.Key(role)
	v := View{RoleKey: roleKey}

	var err error
	if v.Gap, v.HasGap, err = s.Gap(ctx, roleKey); err != nil {
		return View{}, err
	}
	if v.Progress, err = s.Role(ctx, roleKey); err != nil {
		return View{}, err
	}
	if v.Final, v.HasFinal, err = s.Final(ctx, roleKey); err != nil {
		return View{}, err
	}
	v.State = mastery.Evaluate(v.GateInput())
	return v, nil
}
