package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
)

var errUsage = errors.New("usage")

// List renders the reminders list screen. An unauthenticated session is
// routed to login instead.
func (a *App) List(ctx context.Context) error {
	if !a.list.Authorize(ctx) {
		a.userName = ""
		fmt.Fprintln(a.out, "Session expired, please login")
		return nil
	}

	a.list.LoadReminders()
	a.disp.Wait()

	if a.list.Empty.Get() {
		fmt.Fprintln(a.out, "No Data")
		return nil
	}
	for i, r := range a.list.Items.Get() {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, r)
	}
	return nil
}

// Show renders the detail view of one reminder.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter reminder id")
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, result.Match(a.repo.GetReminder(ctx, id),
		func(r models.Reminder) string { return r.Detail() },
		func(msg string) string { return msg },
	))
	return nil
}

// New starts a fresh draft and asks for its title and description.
func (a *App) New(ctx context.Context) error {
	a.save.OnClear()

	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}

	a.save.Title.Set(models.OptionalString(title))
	a.save.Description.Set(models.OptionalString(description))
	fmt.Fprintln(a.out, "Draft started, set a place with 'location <lat> <lon> <name>' then 'save'")
	return nil
}

// Edit loads an existing reminder into the draft so it can be changed and
// saved again under the same id.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter reminder id")
	if err != nil {
		return err
	}

	switch res := a.repo.GetReminder(ctx, id).(type) {
	case result.Success[models.Reminder]:
		a.save.Edit(res.Data)
		fmt.Fprintln(a.out, res.Data.Detail())
	case result.Error[models.Reminder]:
		fmt.Fprintln(a.out, res.Message)
	}
	return nil
}

// Location plays the location picker: it fills the place of the draft and
// returns to the edit screen.
func (a *App) Location(ctx context.Context, args []string) error {
	lat, lon, err := ParseCoordinates(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: location <latitude> <longitude> <name>")
		return err
	}
	name := strings.Join(args[2:], " ")
	if name == "" {
		name = fmt.Sprintf("%.5f, %.5f", lat, lon)
	}

	a.save.SelectLocation(name, lat, lon)
	if _, ok := a.save.NavigateBack.Consume(); ok {
		fmt.Fprintf(a.out, "Location set to %s\n", name)
	}
	return nil
}

// Draft prints the reminder being edited.
func (a *App) Draft(ctx context.Context) error {
	fmt.Fprintln(a.out, a.save.Draft().Detail())
	return nil
}

// Save submits the draft. Validation and geofence messages are printed by
// the view-model observers; on success the edit screen is torn down.
func (a *App) Save(ctx context.Context) error {
	if !a.save.Submit() {
		return nil
	}
	a.disp.Wait()

	if _, ok := a.save.NavigateBack.Consume(); ok {
		a.save.OnClear()
	}
	return nil
}

// Clear discards the draft.
func (a *App) Clear(ctx context.Context) error {
	a.save.OnClear()
	fmt.Fprintln(a.out, "Draft cleared")
	return nil
}

// DeleteAll removes every reminder together with its geofence.
func (a *App) DeleteAll(ctx context.Context) error {
	ids, err := reminderIDs(a.repo.ListReminders(ctx))
	if err != nil {
		return err
	}

	if err := a.repo.DeleteAllReminders(ctx); err != nil {
		return err
	}
	if err := a.coord.DisarmAll(ctx, ids); err != nil {
		a.log.Warn(ctx, "regions left registered", "error", err)
	}

	fmt.Fprintf(a.out, "Deleted %d reminders\n", len(ids))
	return nil
}

// Move sets the simulated device position. Entered regions are reported
// asynchronously through the geofence event stream.
func (a *App) Move(ctx context.Context, args []string) error {
	lat, lon, err := ParseCoordinates(args)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: move <latitude> <longitude>")
		return err
	}

	entered, err := a.geo.MoveTo(ctx, lat, lon)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved to %.5f, %.5f (%d regions entered)\n", lat, lon, len(entered))
	return nil
}

func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", errUsage, prompt)
	}
	return v, nil
}

// reminderIDs collects the ids of a list result. A failed list is an error
// so that nothing is deleted while its regions cannot be found.
func reminderIDs(res result.Result[[]models.Reminder]) ([]string, error) {
	switch r := res.(type) {
	case result.Success[[]models.Reminder]:
		ids := make([]string, 0, len(r.Data))
		for _, item := range r.Data {
			ids = append(ids, item.ID)
		}
		return ids, nil
	case result.Error[[]models.Reminder]:
		return nil, fmt.Errorf("list reminders: %s", r.Message)
	default:
		return nil, errors.New("list reminders: unexpected result")
	}
}
