package tui

import (
	"context"
	"strings"

	"chainview/pkg/models"
	"chainview/pkg/tableview"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// entryForm is a create or edit dialog. Field values live on the struct so
// the huh bindings stay valid while the model is copied around.
type entryForm struct {
	title   string
	form    *huh.Form
	address string
	name    string
	tags    string
	submit  func(ctx context.Context, f *entryForm) tea.Cmd
}

func validateAddress(s string) error {
	_, err := models.ValidateAddress(s)
	return err
}

func validateName(s string) error {
	_, err := models.ValidateName(s)
	return err
}

func newNameForm(ctrl *tableview.Controller[models.Name], existing *models.Name) *entryForm {
	f := &entryForm{title: "New Name"}
	var base models.Name
	if existing != nil {
		base = *existing
		f.title = "Edit Name"
		f.address, f.name, f.tags = base.Address, base.Name, base.Tags
	}

	var fields []huh.Field
	if existing == nil {
		fields = append(fields, huh.NewInput().
			Title("Address").
			Description("Hex address or ENS name").
			Placeholder("0x... or name.eth").
			Value(&f.address).
			Validate(validateAddress))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Name").
			Value(&f.name).
			Validate(validateName),
		huh.NewInput().
			Title("Tags").
			Placeholder("80-Individuals:Friends").
			Value(&f.tags),
	)
	f.form = huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCatppuccin())

	f.submit = func(ctx context.Context, f *entryForm) tea.Cmd {
		n := base
		addr, err := models.ValidateAddress(f.address)
		if err != nil {
			return nil
		}
		n.Address = addr
		n.Name, _ = models.ValidateName(f.name)
		n.Tags = strings.TrimSpace(f.tags)
		n.IsCustom = true
		if existing == nil {
			n.Source = "user"
			return settle(ctx, ctrl.Key(), ctrl.Create(n))
		}
		return settle(ctx, ctrl.Key(), ctrl.Update(n))
	}
	return f
}

func newMonitorForm(ctrl *tableview.Controller[models.Monitor]) *entryForm {
	f := &entryForm{title: "New Monitor"}
	f.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Address").
			Placeholder("0x...").
			Value(&f.address).
			Validate(validateAddress),
		huh.NewInput().
			Title("Name").
			Value(&f.name),
	)).WithTheme(huh.ThemeCatppuccin())

	f.submit = func(ctx context.Context, f *entryForm) tea.Cmd {
		addr, err := models.ValidateAddress(f.address)
		if err != nil {
			return nil
		}
		m := models.Monitor{Address: addr, Name: strings.TrimSpace(f.name)}
		return settle(ctx, ctrl.Key(), ctrl.Create(m))
	}
	return f
}
