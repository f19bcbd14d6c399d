package service

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dailydiet/daily-diet/database"
	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/util/metrics"
	"github.com/dailydiet/daily-diet/web/cache"

	"gorm.io/gorm"
)

const (
	maxMealNameLen        = 80
	maxMealDescriptionLen = 255
)

// time.Parse tolerates single-digit hours and trailing fractional seconds.
var dateTimeShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// MealPatch holds the validated fields of a meal payload. Nil fields were
// absent from the request.
type MealPatch struct {
	Name        *string
	Description *string
	DateTime    *time.Time
	OnDiet      *bool
}

func (p MealPatch) empty() bool {
	return p.Name == nil && p.Description == nil && p.DateTime == nil && p.OnDiet == nil
}

// ParseMealPayload validates a meal body. Fields are checked in a fixed order
// (name, description, date_time, on_diet) and the first failure is returned.
// When partial is false every field is required; otherwise at least one must
// be present. Prefixed keys (meal_name) win over their short aliases (name).
func ParseMealPayload(body []byte, partial bool) (MealPatch, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return MealPatch{}, err
	}

	var p MealPatch
	if raw, ok := obj.lookup("meal_name", "name"); ok {
		s, valid := trimmedString(raw)
		if !valid {
			return MealPatch{}, invalidInput("meal_name invalid")
		}
		if utf8.RuneCountInString(s) > maxMealNameLen {
			return MealPatch{}, invalidInput("meal_name must be at most %d characters", maxMealNameLen)
		}
		p.Name = &s
	} else if !partial {
		return MealPatch{}, invalidInput("meal_name is required")
	}

	if raw, ok := obj.lookup("meal_description", "description"); ok {
		s, valid := trimmedString(raw)
		if !valid {
			return MealPatch{}, invalidInput("meal_description invalid")
		}
		if utf8.RuneCountInString(s) > maxMealDescriptionLen {
			return MealPatch{}, invalidInput("meal_description must be at most %d characters", maxMealDescriptionLen)
		}
		p.Description = &s
	} else if !partial {
		return MealPatch{}, invalidInput("meal_description is required")
	}

	if raw, ok := obj.lookup("meal_date_time", "date_time"); ok {
		s, valid := trimmedString(raw)
		if !valid {
			return MealPatch{}, invalidInput("meal_date_time invalid")
		}
		t, err := ParseDateTime(s)
		if err != nil {
			return MealPatch{}, err
		}
		p.DateTime = &t
	} else if !partial {
		return MealPatch{}, invalidInput("meal_date_time is required")
	}

	if raw, ok := obj.lookup("meal_on_diet", "on_diet"); ok {
		b, valid := strictBool(raw)
		if !valid {
			return MealPatch{}, invalidInput("meal_on_diet must be a boolean")
		}
		p.OnDiet = &b
	} else if !partial {
		return MealPatch{}, invalidInput("meal_on_diet is required")
	}

	if partial && p.empty() {
		return MealPatch{}, invalidInput("no meal field to update")
	}
	return p, nil
}

// ParseDateTime parses the fixed "YYYY-MM-DD HH:MM:SS" layout as UTC.
func ParseDateTime(s string) (time.Time, error) {
	errFormat := invalidInput("meal_date_time must match YYYY-MM-DD HH:MM:SS")
	if !dateTimeShape.MatchString(s) {
		return time.Time{}, errFormat
	}
	t, err := time.ParseInLocation(model.DateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errFormat
	}
	return t, nil
}

// MealMetrics summarises a user's meals.
type MealMetrics struct {
	Total            int `json:"total"`
	OnDiet           int `json:"on_diet"`
	OffDiet          int `json:"off_diet"`
	BestOnDietStreak int `json:"best_on_diet_streak"`
}

// MealService stores meals. Every query is scoped to the owning user, so a
// meal owned by someone else is indistinguishable from a missing one.
type MealService struct {
	db    *gorm.DB
	cache *cache.Redis
}

// NewMealService returns a MealService. rc caches metrics and may be nil.
func NewMealService(db *gorm.DB, rc *cache.Redis) *MealService {
	return &MealService{db: db, cache: rc}
}

func (s *MealService) owned(ctx context.Context, owner *model.User) *gorm.DB {
	return s.db.WithContext(ctx).Where("user_id = ?", owner.Id)
}

// CreateMeal persists a fully populated patch for owner.
func (s *MealService) CreateMeal(ctx context.Context, owner *model.User, p MealPatch) (*model.Meal, error) {
	if p.Name == nil || p.Description == nil || p.DateTime == nil || p.OnDiet == nil {
		return nil, invalidInput("all meal fields are required")
	}
	meal := &model.Meal{
		Name:        *p.Name,
		Description: *p.Description,
		DateTime:    p.DateTime.UTC(),
		OnDiet:      *p.OnDiet,
		UserId:      owner.Id,
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, ErrUnauthenticated
		}
		return nil, internal("create meal", err)
	}
	metrics.MealsCreated.Inc()
	s.cache.InvalidateMealMetrics(ctx, owner.Id)
	return meal, nil
}

// ListMeals returns owner's meals ordered by date_time then id. A non-nil
// onDiet keeps only meals with that flag.
func (s *MealService) ListMeals(ctx context.Context, owner *model.User, onDiet *bool) ([]model.Meal, error) {
	q := s.owned(ctx, owner)
	if onDiet != nil {
		q = q.Where("on_diet = ?", *onDiet)
	}
	meals := make([]model.Meal, 0)
	if err := q.Order("date_time ASC").Order("id ASC").Find(&meals).Error; err != nil {
		return nil, internal("list meals", err)
	}
	return meals, nil
}

func (s *MealService) GetMeal(ctx context.Context, owner *model.User, id int) (*model.Meal, error) {
	meal := &model.Meal{}
	err := s.owned(ctx, owner).First(meal, id).Error
	if database.IsNotFound(err) {
		return nil, notFound("meal")
	} else if err != nil {
		return nil, internal("get meal", err)
	}
	return meal, nil
}

// UpdateMeal applies the present fields of p and leaves the rest untouched.
func (s *MealService) UpdateMeal(ctx context.Context, owner *model.User, id int, p MealPatch) (*model.Meal, error) {
	if p.empty() {
		return nil, invalidInput("no meal field to update")
	}
	meal, err := s.GetMeal(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if p.Name != nil {
		meal.Name = *p.Name
		updates["name"] = meal.Name
	}
	if p.Description != nil {
		meal.Description = *p.Description
		updates["description"] = meal.Description
	}
	if p.DateTime != nil {
		meal.DateTime = p.DateTime.UTC()
		updates["date_time"] = meal.DateTime
	}
	if p.OnDiet != nil {
		meal.OnDiet = *p.OnDiet
		updates["on_diet"] = meal.OnDiet
	}

	res := s.db.WithContext(ctx).
		Model(&model.Meal{}).
		Where("id = ? AND user_id = ?", id, owner.Id).
		Updates(updates)
	if res.Error != nil {
		return nil, internal("update meal", res.Error)
	}
	if res.RowsAffected == 0 {
		// deleted between the read and the write
		return nil, notFound("meal")
	}
	s.cache.InvalidateMealMetrics(ctx, owner.Id)
	return meal, nil
}

func (s *MealService) DeleteMeal(ctx context.Context, owner *model.User, id int) error {
	res := s.owned(ctx, owner).Delete(&model.Meal{}, id)
	if res.Error != nil {
		return internal("delete meal", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("meal")
	}
	s.cache.InvalidateMealMetrics(ctx, owner.Id)
	return nil
}

// Metrics counts owner's meals and finds the longest run of consecutive
// on-diet meals in date_time order. Results are cached until the owner's
// meals change.
func (s *MealService) Metrics(ctx context.Context, owner *model.User) (*MealMetrics, error) {
	m := &MealMetrics{}
	err := s.cache.GetOrSet(ctx, cache.MealMetricsKey(owner.Id), m, cache.TTLMealMetrics, func() error {
		return s.computeMetrics(ctx, owner, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MealService) computeMetrics(ctx context.Context, owner *model.User, m *MealMetrics) error {
	var flags []bool
	err := s.owned(ctx, owner).
		Model(&model.Meal{}).
		Order("date_time ASC").
		Order("id ASC").
		Pluck("on_diet", &flags).
		Error
	if err != nil {
		return internal("meal metrics", err)
	}

	*m = MealMetrics{Total: len(flags)}
	streak := 0
	for _, onDiet := range flags {
		if onDiet {
			m.OnDiet++
			streak++
			if streak > m.BestOnDietStreak {
				m.BestOnDietStreak = streak
			}
		} else {
			m.OffDiet++
			streak = 0
		}
	}
	return nil
}
