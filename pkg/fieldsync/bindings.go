package fieldsync

import (
	"context"

	"github.com/pluqqy/pluqqy-studio/pkg/content"
	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

func projectReady(key Key) bool {
	return key.ProjectID != ""
}

func pageReady(key Key) bool {
	return key.ProjectID != "" && key.Page > 0
}

// TitleBinding syncs the project title
func TitleBinding(svc content.Service) Binding[string] {
	return Binding[string]{
		Name:  "title",
		Ready: projectReady,
		Get: func(ctx context.Context, key Key) (string, error) {
			t, err := svc.GetTitle(ctx, key.ProjectID)
			return t.Title, err
		},
		Put: func(ctx context.Context, key Key, value string) (string, error) {
			t, err := svc.UpdateTitle(ctx, key.ProjectID, value)
			return t.Title, err
		},
	}
}

// TextBinding syncs the narrative text of one page
func TextBinding(svc content.Service) Binding[string] {
	return Binding[string]{
		Name:  "page text",
		Ready: pageReady,
		Get: func(ctx context.Context, key Key) (string, error) {
			p, err := svc.GetPage(ctx, key.ProjectID, key.Page)
			return p.ScriptText, err
		},
		Put: func(ctx context.Context, key Key, value string) (string, error) {
			p, err := svc.UpdatePage(ctx, key.ProjectID, key.Page, models.PageUpdate{ScriptText: &value})
			return p.ScriptText, err
		},
	}
}

// FieldsBinding syncs the structured content of one page. Writes never touch
// the narrative text, which has its own controller.
func FieldsBinding(svc content.Service) Binding[models.PageFields] {
	return Binding[models.PageFields]{
		Name:  "page content",
		Ready: pageReady,
		Equal: func(a, b models.PageFields) bool { return a.Equal(b) },
		Get: func(ctx context.Context, key Key) (models.PageFields, error) {
			p, err := svc.GetPage(ctx, key.ProjectID, key.Page)
			return p.Fields(), err
		},
		Put: func(ctx context.Context, key Key, value models.PageFields) (models.PageFields, error) {
			p, err := svc.UpdatePage(ctx, key.ProjectID, key.Page, value.Update())
			return p.Fields(), err
		},
	}
}
