package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/tgienger/todo/internal/models"
)

func date(y int, m time.Month, d int) *models.Date {
	return models.NewDate(y, m, d).Ptr()
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestActiveFilterScenario(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "TaskA", Category: models.CategoryWork, Priority: models.PriorityHigh, DueDate: date(2023, time.June, 30)},
		{ID: 2, Text: "TaskB", Completed: true, Category: models.CategoryWork, Priority: models.PriorityMedium, DueDate: date(2023, time.June, 15)},
	}
	spec := Spec{Status: StatusActive, Category: CategoryAll, Sort: SortDueDate}

	res := Compute(c, spec)
	assert.Equal(t, []int64{1}, ids(res.Tasks))
	assert.Equal(t, Stats{Total: 2, Active: 1, Completed: 1}, res.Stats)
}

func TestSearchMatchesTags(t *testing.T) {
	spec := DefaultSpec()
	spec.Search = "fit"

	res := Compute(models.Seed(), spec)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "Exercise", res.Tasks[0].Text)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "Buy MILK"},
		{ID: 2, Text: "walk", Tags: []string{"Outdoors"}},
		{ID: 3, Text: "read"},
	}
	spec := DefaultSpec()

	spec.Search = "milk"
	assert.Equal(t, []int64{1}, ids(Compute(c, spec).Tasks))
	spec.Search = "OUTDOOR"
	assert.Equal(t, []int64{2}, ids(Compute(c, spec).Tasks))
	spec.Search = "ea"
	assert.Equal(t, []int64{3}, ids(Compute(c, spec).Tasks))
}

func TestSortByPriority(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "l", Priority: models.PriorityLow},
		{ID: 2, Text: "h", Priority: models.PriorityHigh},
		{ID: 3, Text: "m", Priority: models.PriorityMedium},
	}
	res := Compute(c, Spec{Status: StatusAll, Category: CategoryAll, Sort: SortPriority})
	assert.Equal(t, []int64{2, 3, 1}, ids(res.Tasks))
}

func TestSortIsStable(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "same", Priority: models.PriorityLow, DueDate: date(2024, time.May, 1)},
		{ID: 2, Text: "same", Priority: models.PriorityHigh, DueDate: date(2024, time.May, 1)},
		{ID: 3, Text: "same", Priority: models.PriorityLow, DueDate: date(2024, time.May, 1)},
		{ID: 4, Text: "same", Priority: models.PriorityHigh, DueDate: date(2024, time.May, 1)},
	}
	spec := DefaultSpec()

	spec.Sort = SortPriority
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(Compute(c, spec).Tasks))
	spec.Sort = SortDueDate
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Compute(c, spec).Tasks))
	spec.Sort = SortAlphabetical
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Compute(c, spec).Tasks))
}

// Tasks without a due date sort as if due on 1970-01-01, ahead of any later
// date. Dates before 1970 still sort ahead of them.
func TestMissingDueDateSortsAsEpoch(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "late", DueDate: date(2023, time.June, 30)},
		{ID: 2, Text: "undated"},
		{ID: 3, Text: "early", DueDate: date(2023, time.June, 15)},
		{ID: 4, Text: "ancient", DueDate: date(1969, time.July, 20)},
	}
	res := Compute(c, DefaultSpec())
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(res.Tasks))
}

func TestAlphabeticalIsLocaleAware(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "zebra"},
		{ID: 2, Text: "Éclair"},
		{ID: 3, Text: "apple"},
		{ID: 4, Text: "Banana"},
	}
	spec := DefaultSpec()
	spec.Sort = SortAlphabetical

	// byte order would put "Banana" and "Éclair" in the wrong places
	assert.Equal(t, []int64{3, 4, 2, 1}, ids(Compute(c, spec).Tasks))
}

func TestAlphabeticalFollowsLanguage(t *testing.T) {
	c := models.Collection{
		{ID: 1, Text: "zoo"},
		{ID: 2, Text: "ärger"},
	}
	spec := DefaultSpec()
	spec.Sort = SortAlphabetical

	assert.Equal(t, []int64{2, 1}, ids(ComputeIn(language.German, c, spec).Tasks))
	assert.Equal(t, []int64{1, 2}, ids(ComputeIn(language.Swedish, c, spec).Tasks))
}

func TestFilterIsConjunction(t *testing.T) {
	c := models.Collection{}
	var id int64
	for _, done := range []bool{false, true} {
		for _, cat := range models.Categories() {
			for _, text := range []string{"report", "groceries"} {
				id++
				c = append(c, models.Task{ID: id, Text: text, Completed: done, Category: cat, Priority: models.PriorityLow})
			}
		}
	}

	for _, status := range statuses {
		for _, cat := range append([]CategoryFilter{CategoryAll}, OnlyCategory(models.CategoryShopping)) {
			for _, term := range []string{"", "REP", "xyz"} {
				spec := Spec{Status: status, Category: cat, Search: term, Sort: SortDueDate}
				got := map[int64]bool{}
				for _, task := range Compute(c, spec).Tasks {
					got[task.ID] = true
				}
				for _, task := range c {
					want := status.matches(task) &&
						(cat == CategoryAll || models.Category(cat) == task.Category) &&
						(term == "" || (term == "REP" && task.Text == "report"))
					assert.Equal(t, want, got[task.ID], "spec=%+v task=%d", spec, task.ID)
					assert.Equal(t, want, Matches(task, spec))
				}
			}
		}
	}
}

func TestStatsIgnoreSpec(t *testing.T) {
	c := models.Seed()
	specs := []Spec{
		DefaultSpec(),
		{Status: StatusCompleted, Category: OnlyCategory(models.CategoryHealth), Search: "zzz", Sort: SortPriority},
		{Status: StatusActive, Category: CategoryAll, Search: "react", Sort: SortAlphabetical},
	}
	for _, s := range specs {
		st := Compute(c, s).Stats
		assert.Equal(t, Stats{Total: 3, Active: 2, Completed: 1}, st)
		assert.Equal(t, st.Total, st.Active+st.Completed)
	}
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	c := models.Seed()
	before := c.Clone()
	spec := DefaultSpec()
	spec.Sort = SortAlphabetical

	Compute(c, spec)
	assert.True(t, before.Equal(c))
}

type fakeSource struct {
	c       models.Collection
	version uint64
	calls   int
}

func (f *fakeSource) Snapshot() models.Collection { f.calls++; return f.c }
func (f *fakeSource) Version() uint64             { return f.version }

func TestComputerMemoizes(t *testing.T) {
	src := &fakeSource{c: models.Seed()}
	comp := NewComputer(language.Und)

	first := comp.View(src, DefaultSpec())
	comp.View(src, DefaultSpec())
	assert.Equal(t, 1, src.calls)

	spec := DefaultSpec()
	spec.Status = StatusCompleted
	res := comp.View(src, spec)
	assert.Equal(t, 2, src.calls)
	assert.Len(t, res.Tasks, 1)

	src.version++
	comp.View(src, spec)
	assert.Equal(t, 3, src.calls)
	assert.Len(t, first.Tasks, 3)
}

func TestParseAndCycle(t *testing.T) {
	k, err := ParseSortKey("Priority")
	require.NoError(t, err)
	assert.Equal(t, SortPriority, k)
	assert.Equal(t, SortDueDate, SortAlphabetical.Next())

	st, err := ParseStatus("ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st.Next())

	cf, err := ParseCategoryFilter("health")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, cf.Next())
	assert.Equal(t, OnlyCategory(models.CategoryWork), CategoryAll.Next())

	_, err = ParseCategoryFilter("Errands")
	assert.Error(t, err)
}
