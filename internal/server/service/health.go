package service

import (
	"context"
	"sort"

	"github.com/IvanChernomyrdin/suchauftrag/internal/server/metrics"
)

// HealthService опрашивает зависимости сервера.
type HealthService struct {
	deps map[string]HealthRepo
}

func NewHealthService(deps map[string]HealthRepo) *HealthService {
	return &HealthService{deps: deps}
}

// Check пингует все зависимости и возвращает ошибки по именам.
// Пустая карта — всё доступно.
func (s *HealthService) Check(ctx context.Context) map[string]error {
	failed := make(map[string]error)

	names := make([]string, 0, len(s.deps))
	for name := range s.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := s.deps[name].Ping(ctx)
		metrics.SetDependencyHealth(name, err == nil)
		if err != nil {
			failed[name] = err
		}
	}
	return failed
}
