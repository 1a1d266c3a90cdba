package health

import "fmt"

// GetHistory returns the most recent recorded operations, newest first.
func (s *Service) GetHistory(limit int) ([]*Operation, error) {
	ops, err := s.store.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
