package repository

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestInstanceRepository interface {
	Create(instance *model.TestInstance) error
	// CreateIfEligible inserts the instance only when the candidate has no
	// other attempt of the type, in any state. The check and the insert are
	// serialized against concurrent creates for the same (candidate, type), so
	// racing calls cannot all pass the check; losers get ErrConflict.
	CreateIfEligible(instance *model.TestInstance) error
	Save(instance *model.TestInstance) error
	FindByID(id uint) (*model.TestInstance, error)
	FindByIDWithSnapshots(id uint) (*model.TestInstance, error)
	FindAllByCandidate(candidateID uint) ([]model.TestInstance, error)
	HasActive(candidateID uint, testType model.TestType) (bool, error)
	HasSubmitted(candidateID uint, testType model.TestType) (bool, error)
	// Transition loads the instance under an exclusive row lock, applies fn
	// and persists the mutated instance in the same transaction. Racing
	// transitions on one instance serialize here.
	Transition(id uint, fn func(instance *model.TestInstance) error) error
}

type testInstanceRepository struct {
	db *gorm.DB
}

func NewTestInstanceRepository(db *gorm.DB) TestInstanceRepository {
	return &testInstanceRepository{db: db}
}

func (r *testInstanceRepository) Create(instance *model.TestInstance) error {
	return r.db.Create(instance).Error
}

func (r *testInstanceRepository) CreateIfEligible(instance *model.TestInstance) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Advisory lock keyed on (candidate, type); held until commit, so the
		// existence check and the insert are one serialized unit.
		err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)",
			int32(instance.CandidateID), testTypeLockKey(instance.TestType)).Error
		if err != nil {
			return err
		}

		var existing model.TestInstance
		err = tx.Where("candidate_id = ? AND test_type = ?", instance.CandidateID, instance.TestType).
			First(&existing).Error
		if err == nil {
			return eligibilityConflict(&existing)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(instance).Error
	})
}

func (r *testInstanceRepository) Save(instance *model.TestInstance) error {
	return r.db.Save(instance).Error
}

func (r *testInstanceRepository) FindByID(id uint) (*model.TestInstance, error) {
	var instance model.TestInstance
	if err := r.db.First(&instance, id).Error; err != nil {
		return nil, translateNotFound(err, "test instance %d", id)
	}
	return &instance, nil
}

func (r *testInstanceRepository) FindByIDWithSnapshots(id uint) (*model.TestInstance, error) {
	var instance model.TestInstance
	err := r.db.Preload("Snapshots", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_snapshots.order_in_test ASC")
	}).First(&instance, id).Error
	if err != nil {
		return nil, translateNotFound(err, "test instance %d", id)
	}
	return &instance, nil
}

func (r *testInstanceRepository) FindAllByCandidate(candidateID uint) ([]model.TestInstance, error) {
	var instances []model.TestInstance
	err := r.db.Where("candidate_id = ?", candidateID).Order("created_at DESC").Find(&instances).Error
	return instances, err
}

func (r *testInstanceRepository) HasActive(candidateID uint, testType model.TestType) (bool, error) {
	var count int64
	err := r.db.Model(&model.TestInstance{}).
		Where("candidate_id = ? AND test_type = ? AND status IN ?",
			candidateID, testType, []model.TestStatus{model.StatusNotStarted, model.StatusInProgress}).
		Count(&count).Error
	return count > 0, err
}

func (r *testInstanceRepository) HasSubmitted(candidateID uint, testType model.TestType) (bool, error) {
	var count int64
	err := r.db.Model(&model.TestInstance{}).
		Where("candidate_id = ? AND test_type = ? AND status = ?",
			candidateID, testType, model.StatusSubmitted).
		Count(&count).Error
	return count > 0, err
}

func (r *testInstanceRepository) Transition(id uint, fn func(instance *model.TestInstance) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var instance model.TestInstance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&instance, id).Error
		if err != nil {
			return translateNotFound(err, "test instance %d", id)
		}
		if err := fn(&instance); err != nil {
			return err
		}
		return tx.Save(&instance).Error
	})
}

// translateNotFound maps gorm's record-not-found onto the engine's typed error
// so services and the boundary never depend on gorm sentinels.
func translateNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, apperr.ErrNotFound)...)
	}
	return err
}

// eligibilityConflict names the attempt that blocks a new create.
func eligibilityConflict(existing *model.TestInstance) error {
	if existing.Status == model.StatusSubmitted {
		return fmt.Errorf("candidate %d already completed a %s attempt: %w",
			existing.CandidateID, existing.TestType, apperr.ErrConflict)
	}
	return fmt.Errorf("candidate %d already has an open %s attempt: %w",
		existing.CandidateID, existing.TestType, apperr.ErrConflict)
}

func testTypeLockKey(testType model.TestType) int32 {
	h := fnv.New32a()
	h.Write([]byte(testType))
	return int32(h.Sum32())
}
