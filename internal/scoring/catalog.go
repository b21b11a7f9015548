package scoring

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	NotRated  = 0
	MinRating = 0
	MaxRating = 4
)

// RatingDefinitions maps each rating value to its meaning for one question.
// Stored as JSONB with string keys "0".."4".
type RatingDefinitions map[int]string

// Value implements driver.Valuer. The JSON is returned as a string because
// lib/pq encodes []byte parameters as bytea.
func (d RatingDefinitions) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner
func (d *RatingDefinitions) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = RatingDefinitions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into RatingDefinitions", src)
	}
	defs := RatingDefinitions{}
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("invalid rating definitions: %w", err)
	}
	*d = defs
	return nil
}

// Values returns the defined rating values in ascending order
func (d RatingDefinitions) Values() []int {
	values := make([]int, 0, len(d))
	for v := range d {
		values = append(values, v)
	}
	sort.Ints(values)
	return values
}

// Question is a single rateable attribute in the catalog
type Question struct {
	ID                string            `json:"question_id" yaml:"id"`
	CategoryID        string            `json:"-" yaml:"-"`
	CategoryName      string            `json:"-" yaml:"-"`
	Text              string            `json:"text" yaml:"text"`
	RatingDefinitions RatingDefinitions `json:"rating_definitions" yaml:"ratings"`
}

// Category groups questions for display and rollup
type Category struct {
	ID        string     `json:"category_id" yaml:"id"`
	Name      string     `json:"category_name" yaml:"name"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// GroupByCategory groups questions by category. Categories appear in the
// order they are first seen and questions keep their input order.
func GroupByCategory(questions []Question) []Category {
	categories := make([]Category, 0)
	index := make(map[string]int)

	for _, q := range questions {
		i, ok := index[q.CategoryID]
		if !ok {
			i = len(categories)
			index[q.CategoryID] = i
			categories = append(categories, Category{ID: q.CategoryID, Name: q.CategoryName})
		}
		categories[i].Questions = append(categories[i].Questions, q)
	}

	return categories
}

// Flatten is the inverse of GroupByCategory. It copies category fields onto
// each question.
func Flatten(categories []Category) []Question {
	var questions []Question
	for _, c := range categories {
		for _, q := range c.Questions {
			q.CategoryID = c.ID
			q.CategoryName = c.Name
			questions = append(questions, q)
		}
	}
	return questions
}

// Catalog is an immutable lookup of active questions
type Catalog struct {
	ordered []Question
	byID    map[string]Question
}

// NewCatalog indexes the given active questions
func NewCatalog(questions []Question) *Catalog {
	c := &Catalog{
		ordered: questions,
		byID:    make(map[string]Question, len(questions)),
	}
	for _, q := range questions {
		c.byID[q.ID] = q
	}
	return c
}

// Lookup returns the active question with the given id
func (c *Catalog) Lookup(questionID string) (Question, bool) {
	q, ok := c.byID[questionID]
	return q, ok
}

// Categories returns the catalog grouped by category
func (c *Catalog) Categories() []Category {
	return GroupByCategory(c.ordered)
}

// Len returns the number of active questions
func (c *Catalog) Len() int {
	return len(c.ordered)
}
