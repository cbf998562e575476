package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/reminders"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeo struct {
	armed    []string
	disarmed []string
	err      error
}

func (f *fakeGeo) Arm(_ context.Context, r models.Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.armed = append(f.armed, r.ID)
	return nil
}

func (f *fakeGeo) DisarmAll(_ context.Context, ids []string) error {
	f.disarmed = append(f.disarmed, ids...)
	return nil
}

func newTestServer(store *reminders.MemoryStore, geo *fakeGeo) *Server {
	return NewServer(services.NewReminderRepository(store, logging.Nop()), geo, logging.Nop())
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content %T", c)
		return ""
	}
}

func TestAddReminder_ArmsAndSaves(t *testing.T) {
	ctx := context.Background()
	store := reminders.NewMemoryStore()
	geo := &fakeGeo{}
	s := newTestServer(store, geo)

	res, err := s.handleAddReminder(ctx, call("add_reminder", map[string]any{
		"title": "Buy milk", "location": "Shop", "latitude": 52.52, "longitude": 13.405,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var got models.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, "Buy milk", *got.Title)
	assert.Nil(t, got.Description)
	assert.Equal(t, []string{got.ID}, geo.armed)

	saved, err := store.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, 13.405, *saved.Longitude)
}

func TestAddReminder_ValidationOrder(t *testing.T) {
	geo := &fakeGeo{}
	s := newTestServer(reminders.NewMemoryStore(), geo)

	res, err := s.handleAddReminder(context.Background(), call("add_reminder", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, models.MsgSelectLocation.Text(), text(t, res))

	res, _ = s.handleAddReminder(context.Background(), call("add_reminder", map[string]any{"location": "x"}))
	assert.Equal(t, models.MsgEnterTitle.Text(), text(t, res))
	assert.Empty(t, geo.armed)
}

func TestAddReminder_GeofenceFailureDoesNotSave(t *testing.T) {
	store := reminders.NewMemoryStore()
	s := newTestServer(store, &fakeGeo{err: geofence.ErrLocationDisabled})

	res, err := s.handleAddReminder(context.Background(), call("add_reminder", map[string]any{
		"title": "t", "location": "l", "latitude": 1.0, "longitude": 2.0,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, models.MsgLocationDisabled.Text(), text(t, res))

	all, _ := store.GetAll(context.Background())
	assert.Empty(t, all)
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	store := reminders.NewMemoryStore(
		models.Reminder{ID: "1", Title: models.Ptr("title1"), Location: models.Ptr("a")},
		models.Reminder{ID: "2", Title: models.Ptr("title2"), Location: models.Ptr("b")},
	)
	s := newTestServer(store, &fakeGeo{})

	res, err := s.handleListReminders(ctx, call("list_reminders", nil))
	require.NoError(t, err)
	var list []models.Reminder
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "title2", *list[1].Title)

	res, _ = s.handleGetReminder(ctx, call("get_reminder", map[string]any{"id": "2"}))
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "title2")

	res, _ = s.handleGetReminder(ctx, call("get_reminder", map[string]any{"id": "404"}))
	assert.True(t, res.IsError)
	assert.Equal(t, services.NotFoundMessage, text(t, res))

	res, _ = s.handleGetReminder(ctx, call("get_reminder", nil))
	assert.True(t, res.IsError)
}

func TestListReminders_EmptyAndFault(t *testing.T) {
	ctx := context.Background()
	store := reminders.NewMemoryStore()
	s := newTestServer(store, &fakeGeo{})

	res, _ := s.handleListReminders(ctx, call("list_reminders", nil))
	assert.Equal(t, "No reminders found.", text(t, res))

	store.Fail(errors.New("Error"))
	res, _ = s.handleListReminders(ctx, call("list_reminders", nil))
	assert.True(t, res.IsError)
	assert.Equal(t, "Error", text(t, res))
}

func TestDeleteAll_DisarmsRegions(t *testing.T) {
	ctx := context.Background()
	store := reminders.NewMemoryStore(models.Reminder{ID: "a"}, models.Reminder{ID: "b"})
	geo := &fakeGeo{}
	s := newTestServer(store, geo)

	res, err := s.handleDeleteAll(ctx, call("delete_all_reminders", nil))
	require.NoError(t, err)
	assert.Equal(t, "Deleted 2 reminders.", text(t, res))
	assert.Equal(t, []string{"a", "b"}, geo.disarmed)

	all, _ := store.GetAll(ctx)
	assert.Empty(t, all)
}

func TestNewServer_RegistersTools(t *testing.T) {
	s := newTestServer(reminders.NewMemoryStore(), &fakeGeo{})
	require.NotNil(t, s.MCPServer())
}

type listFailStore struct {
	*reminders.MemoryStore
}

func (listFailStore) GetAll(context.Context) ([]models.Reminder, error) {
	return nil, errors.New("read timeout")
}

func TestDeleteAll_ListFailureDeletesNothing(t *testing.T) {
	ctx := context.Background()
	store := reminders.NewMemoryStore(models.Reminder{ID: "a"})
	geo := &fakeGeo{}
	s := NewServer(services.NewReminderRepository(listFailStore{store}, logging.Nop()), geo, logging.Nop())

	res, err := s.handleDeleteAll(ctx, call("delete_all_reminders", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "read timeout")

	all, _ := store.GetAll(ctx)
	assert.Len(t, all, 1)
	assert.Empty(t, geo.disarmed)
}
