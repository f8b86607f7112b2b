package pages

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/content/contenttest"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

func TestIndexAfterDelete(t *testing.T) {
	tests := []struct {
		name    string
		viewed  int
		deleted int
		count   int
		want    int
	}{
		{"viewed last page deleted", 2, 2, 3, 1},
		{"viewed middle page deleted", 1, 1, 3, 1},
		{"viewed first page deleted", 0, 0, 3, 0},
		{"earlier page deleted", 2, 0, 3, 1},
		{"later page deleted", 0, 2, 3, 0},
		{"only page deleted", 0, 0, 1, 0},
		{"out of range view is clamped", 7, 4, 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndexAfterDelete(tt.viewed, tt.deleted, tt.count))
		})
	}
}

func TestManager_Add(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two")
	m := NewManager(fake, "p1", 0)

	cmd := m.Add(models.PageContent{ScriptText: "three"})
	require.NotNil(t, cmd)
	assert.True(t, m.Adding)
	assert.Nil(t, m.Delete(1, 0, 2), "operations do not overlap")
	assert.ErrorIs(t, m.LastErr, ErrBusy)

	msg := cmd()
	handled, _ := m.HandleMessage(msg)
	require.True(t, handled)
	assert.False(t, m.Busy())
	assert.NoError(t, m.LastErr)

	added := msg.(AddedMsg)
	assert.Equal(t, 3, added.Page.Number, "new pages are appended")
	assert.Equal(t, "three", added.Page.ScriptText)
}

func TestManager_DeleteLastViewedPage(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two", "three")
	m := NewManager(fake, "p1", 0)

	cmd := m.Delete(3, 2, 3)
	require.NotNil(t, cmd)
	assert.True(t, m.Deleting)

	msg := cmd().(DeletedMsg)
	handled, _ := m.HandleMessage(msg)
	require.True(t, handled)
	require.NoError(t, msg.Err)
	assert.Equal(t, 1, msg.NextIndex)
	assert.False(t, m.Busy())

	p, _ := fake.Project("p1")
	assert.Len(t, p.Pages, 2)
}

func TestManager_DeleteRenumbers(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two", "three")
	m := NewManager(fake, "p1", 0)

	msg := m.Delete(1, 2, 3)().(DeletedMsg)
	m.HandleMessage(msg)
	assert.Equal(t, 1, msg.NextIndex, "the view follows the page it was on")

	p, _ := fake.Project("p1")
	require.Len(t, p.Pages, 2)
	assert.Equal(t, 1, p.Pages[0].Number)
	assert.Equal(t, "two", p.Pages[0].ScriptText)
	assert.Equal(t, 2, p.Pages[1].Number)
	assert.Equal(t, "three", p.Pages[msg.NextIndex].ScriptText)
}

func TestManager_DeleteOutOfRange(t *testing.T) {
	m := NewManager(contenttest.NewFake(), "p1", 0)
	assert.Nil(t, m.Delete(4, 0, 3))
	assert.Error(t, m.LastErr)
	assert.False(t, m.Busy())
}

func TestManager_Failures(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one")
	boom := errors.New("service unavailable")
	fake.FailOn(contenttest.OpAddPage, boom)
	m := NewManager(fake, "p1", 0)

	m.HandleMessage(m.Add(models.PageContent{})())
	assert.ErrorIs(t, m.LastErr, boom)
	assert.Contains(t, m.LastErr.Error(), "failed to add page")
	assert.False(t, m.Busy())

	m.HandleMessage(m.Delete(1, 0, 1)())
	assert.NoError(t, m.LastErr, "a new operation clears the previous error")
}

func TestManager_DeleteMissingPageReportsNotFound(t *testing.T) {
	fake := contenttest.NewFake()
	fake.SeedPages("p1", "Moon", "one", "two")
	m := NewManager(fake, "p1", 0)

	// The project shrank elsewhere since the caller counted its pages
	require.NoError(t, fake.DeletePage(context.Background(), "p1", 2))

	m.HandleMessage(m.Delete(2, 1, 2)())
	assert.ErrorIs(t, m.LastErr, content.ErrNotFound)
	assert.Contains(t, m.LastErr.Error(), "failed to delete page 2")
}
