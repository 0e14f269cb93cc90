package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

type eventRecorder struct {
	events []shared.Event
}

func (r *eventRecorder) Publish(_ context.Context, event shared.Event) error {
	r.events = append(r.events, event)
	return nil
}

func goCourse() Course {
	return Course{
		ID:          "course-go",
		Name:        "Go Fundamentals",
		Description: "intro course",
		Price:       shared.MustMoney(4999, "USD"),
		LessonIDs:   []string{"l1", "l2", "l3"},
	}
}

func TestCatalogue_AddCoursePublishesCreated(t *testing.T) {
	recorder := &eventRecorder{}
	catalogue := NewCatalogue(recorder)

	require.NoError(t, catalogue.AddCourse(context.Background(), goCourse()))

	require.Len(t, recorder.events, 1)
	created, ok := recorder.events[0].(shared.CourseCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "course-go", created.CourseID)
	assert.Equal(t, "Go Fundamentals", created.Name)
	assert.Equal(t, 3, created.LessonCount)
	assert.Equal(t, int64(4999), created.PriceCents)
}

func TestCatalogue_QueryInterface(t *testing.T) {
	catalogue := NewCatalogue(nil)
	require.NoError(t, catalogue.AddCourse(context.Background(), goCourse()))
	ctx := context.Background()

	name, err := catalogue.GetName(ctx, "course-go")
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", name)

	lessons, err := catalogue.GetLessonIds(ctx, "course-go")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2", "l3"}, lessons)

	exists, err := catalogue.Exists(ctx, "course-go")
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := catalogue.GetCourse(ctx, "course-go")
	require.NoError(t, err)
	assert.Equal(t, 3, info.LessonCount)
	assert.True(t, info.IsActive)

	_, err = catalogue.GetCourse(ctx, "course-ghost")
	assert.ErrorIs(t, err, course.ErrCourseNotFound)
}

func TestCatalogue_UpdatePublishesUpdatedWithNewState(t *testing.T) {
	recorder := &eventRecorder{}
	catalogue := NewCatalogue(recorder)
	require.NoError(t, catalogue.AddCourse(context.Background(), goCourse()))

	updated := goCourse()
	updated.Name = "Go Fundamentals v2"
	updated.LessonIDs = append(updated.LessonIDs, "l4")
	updated.IsActive = false
	require.NoError(t, catalogue.UpdateCourse(context.Background(), updated))

	require.Len(t, recorder.events, 2)
	event, ok := recorder.events[1].(shared.CourseUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, "Go Fundamentals v2", event.Name)
	assert.Equal(t, 4, event.LessonCount)
	assert.False(t, event.IsActive)

	// Lesson set reflects the update.
	lessons, err := catalogue.GetLessonIds(context.Background(), "course-go")
	require.NoError(t, err)
	assert.Len(t, lessons, 4)
}

func TestCatalogue_RemovePublishesDeletedAndForgets(t *testing.T) {
	recorder := &eventRecorder{}
	catalogue := NewCatalogue(recorder)
	require.NoError(t, catalogue.AddCourse(context.Background(), goCourse()))
	require.NoError(t, catalogue.RemoveCourse(context.Background(), "course-go"))

	require.Len(t, recorder.events, 2)
	event, ok := recorder.events[1].(shared.CourseDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, "course-go", event.CourseID)

	exists, err := catalogue.Exists(context.Background(), "course-go")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCatalogue_MutatingInputDoesNotLeakIn(t *testing.T) {
	catalogue := NewCatalogue(nil)
	input := goCourse()
	require.NoError(t, catalogue.AddCourse(context.Background(), input))

	input.LessonIDs[0] = "mutated"

	lessons, err := catalogue.GetLessonIds(context.Background(), "course-go")
	require.NoError(t, err)
	assert.Equal(t, "l1", lessons[0])
}
