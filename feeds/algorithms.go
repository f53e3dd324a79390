package feeds

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"newsdesk/models"

	"github.com/samber/lo"
)

// Algorithms holds the user's named filter presets
type Algorithms struct {
	mu         sync.RWMutex
	algorithms []models.Algorithm
	opts       options
}

func NewAlgorithms(opts ...Option) *Algorithms {
	return &Algorithms{opts: buildOptions(opts)}
}

func (a *Algorithms) Create(name string, criteria models.CriteriaSet) (models.Algorithm, error) {
	return a.Add(models.Algorithm{Name: name, Criteria: criteria})
}

// Add stores an algorithm, assigning an id when it has none
func (a *Algorithms) Add(algorithm models.Algorithm) (models.Algorithm, error) {
	algorithm.Name = strings.TrimSpace(algorithm.Name)
	if algorithm.Name == "" {
		return models.Algorithm{}, &ValidationError{Field: "name", Message: "algorithm name must not be empty"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if algorithm.ID == "" {
		algorithm.ID = a.opts.newID()
	}
	if a.indexOf(algorithm.ID) >= 0 {
		return models.Algorithm{}, &ValidationError{Field: "id", Message: fmt.Sprintf("algorithm %q already exists", algorithm.ID)}
	}
	algorithm.Criteria = algorithm.Criteria.Clone()
	a.algorithms = append(a.algorithms, algorithm)

	return cloneAlgorithm(algorithm), nil
}

func (a *Algorithms) Update(id string, mutate func(*models.Algorithm)) (models.Algorithm, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexOf(id)
	if i < 0 {
		return models.Algorithm{}, &NotFoundError{Kind: "algorithm", ID: id}
	}

	updated := a.algorithms[i]
	updated.Criteria = updated.Criteria.Clone()
	mutate(&updated)

	updated.ID = a.algorithms[i].ID
	updated.Name = strings.TrimSpace(updated.Name)
	if updated.Name == "" {
		return models.Algorithm{}, &ValidationError{Field: "name", Message: "algorithm name must not be empty"}
	}

	a.algorithms[i] = updated
	return cloneAlgorithm(updated), nil
}

func (a *Algorithms) Remove(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexOf(id)
	if i < 0 {
		return &NotFoundError{Kind: "algorithm", ID: id}
	}
	a.algorithms = slices.Delete(a.algorithms, i, i+1)
	return nil
}

func (a *Algorithms) Get(id string) (models.Algorithm, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	i := a.indexOf(id)
	if i < 0 {
		return models.Algorithm{}, &NotFoundError{Kind: "algorithm", ID: id}
	}
	return cloneAlgorithm(a.algorithms[i]), nil
}

// List returns the algorithms in creation order
func (a *Algorithms) List() []models.Algorithm {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return lo.Map(a.algorithms, func(alg models.Algorithm, _ int) models.Algorithm {
		return cloneAlgorithm(alg)
	})
}

func (a *Algorithms) Select(id string) (models.Algorithm, error) {
	return a.setSelected(id, func(bool) bool { return true })
}

func (a *Algorithms) Deselect(id string) (models.Algorithm, error) {
	return a.setSelected(id, func(bool) bool { return false })
}

func (a *Algorithms) ToggleSelected(id string) (models.Algorithm, error) {
	return a.setSelected(id, func(selected bool) bool { return !selected })
}

func (a *Algorithms) setSelected(id string, next func(bool) bool) (models.Algorithm, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexOf(id)
	if i < 0 {
		return models.Algorithm{}, &NotFoundError{Kind: "algorithm", ID: id}
	}
	a.algorithms[i].IsSelected = next(a.algorithms[i].IsSelected)
	return cloneAlgorithm(a.algorithms[i]), nil
}

// Selected returns the selected algorithms in creation order
func (a *Algorithms) Selected() []models.Algorithm {
	return lo.Filter(a.List(), func(alg models.Algorithm, _ int) bool {
		return alg.IsSelected
	})
}

// Combined merges the criteria of all selected algorithms dimension by
// dimension. With nothing selected the result is empty and matches everything.
func (a *Algorithms) Combined() models.CriteriaSet {
	var combined models.CriteriaSet
	for _, alg := range a.Selected() {
		combined.Tags = append(combined.Tags, alg.Criteria.Tags...)
		combined.Journalists = append(combined.Journalists, alg.Criteria.Journalists...)
		combined.Sources = append(combined.Sources, alg.Criteria.Sources...)
	}
	return models.CriteriaSet{
		Tags:        lo.Uniq(combined.Tags),
		Journalists: lo.Uniq(combined.Journalists),
		Sources:     lo.Uniq(combined.Sources),
	}
}

func (a *Algorithms) indexOf(id string) int {
	_, i, _ := lo.FindIndexOf(a.algorithms, func(alg models.Algorithm) bool {
		return alg.ID == id
	})
	return i
}

func cloneAlgorithm(algorithm models.Algorithm) models.Algorithm {
	algorithm.Criteria = algorithm.Criteria.Clone()
	return algorithm
}
