package interviews

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used in dev mode and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]*Interview
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]*Interview)}
}

func (r *MemoryRepo) Insert(ctx context.Context, iv *Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := cloneInterview(iv)
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.LastUpdated = now
	r.data[cp.InterviewID] = cp
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, interviewID string) (*Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	iv, ok := r.data[interviewID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneInterview(iv), nil
}

func (r *MemoryRepo) SetDetails(ctx context.Context, interviewID string, role, experienceLevel string) error {
	return r.update(ctx, interviewID, func(iv *Interview) {
		iv.Role = role
		iv.ExperienceLevel = experienceLevel
	})
}

func (r *MemoryRepo) SetSkills(ctx context.Context, interviewID string, skills map[string]int, status Status) error {
	return r.update(ctx, interviewID, func(iv *Interview) {
		iv.Skills = make(map[string]int, len(skills))
		for k, v := range skills {
			iv.Skills[k] = v
		}
		iv.Status = status
	})
}

func (r *MemoryRepo) AppendTurn(ctx context.Context, interviewID string, turn Turn, status Status) error {
	return r.update(ctx, interviewID, func(iv *Interview) {
		iv.History = append(iv.History, turn)
		iv.Status = status
	})
}

func (r *MemoryRepo) SetLastAnswer(ctx context.Context, interviewID string, answer string) error {
	var empty bool
	err := r.update(ctx, interviewID, func(iv *Interview) {
		if len(iv.History) == 0 {
			empty = true
			return
		}
		last := &iv.History[len(iv.History)-1]
		last.Answer = answer
		last.AnsweredAt = time.Now().UTC()
	})
	if err != nil {
		return err
	}
	if empty {
		return ErrConflict
	}
	return nil
}

func (r *MemoryRepo) SetAssessment(ctx context.Context, interviewID string, assessment json.RawMessage, status Status) error {
	return r.update(ctx, interviewID, func(iv *Interview) {
		iv.Assessment = append(json.RawMessage(nil), assessment...)
		iv.Status = status
	})
}

func (r *MemoryRepo) SetReport(ctx context.Context, interviewID string, reportKey string, status Status) error {
	return r.update(ctx, interviewID, func(iv *Interview) {
		iv.ReportKey = reportKey
		iv.Status = status
	})
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, interviewID string, status Status) error {
	return r.update(ctx, interviewID, func(iv *Interview) {
		iv.Status = status
	})
}

func (r *MemoryRepo) update(ctx context.Context, interviewID string, fn func(*Interview)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.data[interviewID]
	if !ok {
		return ErrNotFound
	}
	fn(iv)
	iv.LastUpdated = time.Now().UTC()
	return nil
}

func cloneInterview(iv *Interview) *Interview {
	cp := *iv
	cp.TechnicalSkills = append([]string(nil), iv.TechnicalSkills...)
	cp.History = append([]Turn(nil), iv.History...)
	cp.Assessment = append(json.RawMessage(nil), iv.Assessment...)
	if iv.Skills != nil {
		cp.Skills = make(map[string]int, len(iv.Skills))
		for k, v := range iv.Skills {
			cp.Skills[k] = v
		}
	}
	return &cp
}

var _ Repo = (*MemoryRepo)(nil)
