package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"devrush/internal/model"
	"devrush/internal/repository"
)

type teamRepository struct {
	a access
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return r.a.write(func(st *state) error {
		if team.ID == uuid.Nil {
			team.ID = uuid.New()
		}
		if _, ok := st.teams[team.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.codes[team.TeamCode]; ok {
			return repository.ErrDuplicate
		}
		for i := range team.Members {
			if _, ok := st.memberIndex[team.Members[i].UserID]; ok {
				return repository.ErrDuplicate
			}
		}
		for i := range team.Members {
			st.nextMember++
			team.Members[i].ID = st.nextMember
			team.Members[i].TeamID = team.ID
			st.memberIndex[team.Members[i].UserID] = team.ID
		}
		cp := copyTeam(team)
		st.teams[team.ID] = &cp
		st.teamOrder = append(st.teamOrder, team.ID)
		st.codes[team.TeamCode] = team.ID
		return nil
	})
}

func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return r.get(func(st *state) (uuid.UUID, bool) {
		_, ok := st.teams[id]
		return id, ok
	})
}

// FindByIDForUpdate is FindByID; transactions already hold the store's write lock.
func (r *teamRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return r.FindByID(ctx, id)
}

func (r *teamRepository) FindByCode(ctx context.Context, code string) (*model.Team, error) {
	return r.get(func(st *state) (uuid.UUID, bool) {
		id, ok := st.codes[code]
		return id, ok
	})
}

func (r *teamRepository) FindByMember(ctx context.Context, userID uuid.UUID) (*model.Team, error) {
	return r.get(func(st *state) (uuid.UUID, bool) {
		id, ok := st.memberIndex[userID]
		return id, ok
	})
}

func (r *teamRepository) get(lookup func(st *state) (uuid.UUID, bool)) (*model.Team, error) {
	var found *model.Team
	err := r.a.read(func(st *state) error {
		id, ok := lookup(st)
		if !ok {
			return repository.ErrNotFound
		}
		t, ok := st.teams[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := copyTeam(t)
		found = &cp
		return nil
	})
	return found, err
}

func (r *teamRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.a.read(func(st *state) error {
		_, exists = st.codes[code]
		return nil
	})
	return exists, err
}

func (r *teamRepository) AddMember(ctx context.Context, member *model.TeamMember) error {
	return r.a.write(func(st *state) error {
		t, ok := st.teams[member.TeamID]
		if !ok {
			return repository.ErrNotFound
		}
		if _, ok := st.memberIndex[member.UserID]; ok {
			return repository.ErrDuplicate
		}
		st.nextMember++
		member.ID = st.nextMember
		t.Members = append(t.Members, *member)
		st.memberIndex[member.UserID] = t.ID
		return nil
	})
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return r.a.write(func(st *state) error {
		t, ok := st.teams[teamID]
		if !ok {
			return repository.ErrNotFound
		}
		i := slices.IndexFunc(t.Members, func(m model.TeamMember) bool { return m.UserID == userID })
		if i < 0 {
			return repository.ErrNotFound
		}
		t.Members = slices.Delete(t.Members, i, i+1)
		delete(st.memberIndex, userID)
		return nil
	})
}

func (r *teamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	return r.a.write(func(st *state) error {
		t, ok := st.teams[id]
		if !ok {
			return repository.ErrNotFound
		}
		t.ApprovalStatus = status
		return nil
	})
}

func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.a.write(func(st *state) error {
		t, ok := st.teams[id]
		if !ok {
			return repository.ErrNotFound
		}
		for _, m := range t.Members {
			delete(st.memberIndex, m.UserID)
		}
		delete(st.codes, t.TeamCode)
		delete(st.teams, id)
		st.teamOrder = slices.DeleteFunc(st.teamOrder, func(v uuid.UUID) bool { return v == id })
		return nil
	})
}

func (r *teamRepository) List(ctx context.Context) ([]model.Team, error) {
	return r.list(func(model.Team) bool { return true })
}

func (r *teamRepository) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.Team, error) {
	return r.list(func(t model.Team) bool { return t.ApprovalStatus == status })
}

func (r *teamRepository) list(keep func(model.Team) bool) ([]model.Team, error) {
	var teams []model.Team
	err := r.a.read(func(st *state) error {
		teams = make([]model.Team, 0, len(st.teamOrder))
		for _, id := range st.teamOrder {
			cp := copyTeam(st.teams[id])
			if keep(cp) {
				teams = append(teams, cp)
			}
		}
		return nil
	})
	return teams, err
}
