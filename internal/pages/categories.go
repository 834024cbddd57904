package pages

import (
	"context"
	"io"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

// CategoriesState is the view state of the categories screen.
type CategoriesState struct {
	Status
	Categories []api.Category
}

// CategoriesPage controls the categories screen.
type CategoriesPage struct {
	page

	categories []api.Category
}

// NewCategoriesPage creates the controller for one activation of the screen.
func NewCategoriesPage(d Deps) *CategoriesPage {
	return &CategoriesPage{page: page{env: newEnv(d)}}
}

// State returns a snapshot of the view state.
func (p *CategoriesPage) State() CategoriesState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return CategoriesState{
		Status:     p.status,
		Categories: append([]api.Category(nil), p.categories...),
	}
}

// Activate loads the screen.
func (p *CategoriesPage) Activate(ctx context.Context) error {
	return p.Refresh(ctx)
}

// Refresh reloads the category listing.
func (p *CategoriesPage) Refresh(ctx context.Context) error {
	token := p.begin()
	categories, err := p.backend.ListCategories(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.seq.apply(token) {
		p.logger.DebugContext(ctx, "stale categories response discarded", "token", token)
		return err
	}
	if p.seq.latest(token) {
		p.status.Loading = false
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "load categories failed", "error", err)
		p.categories = nil
		p.status.Error = p.msg(msgLoadCategories)
		return err
	}
	p.categories = categories
	p.status.Error = ""
	return nil
}

// Upload classifies a categories CSV and, when it matches, imports it and
// reloads the listing.
func (p *CategoriesPage) Upload(ctx context.Context, name string, r io.Reader) (*api.ImportResult, error) {
	p.setUploading(true)
	defer p.setUploading(false)

	res, err := p.classifyAndForward(ctx, core.KindCategories, name, r)
	if err != nil {
		p.uploadFailed(ctx, err)
		return nil, err
	}

	// A failed reload keeps its load-error banner over the import notice.
	if err := p.Refresh(ctx); err == nil {
		p.setNotice(res.Message)
	}
	return res, nil
}

// Save creates a category when id is zero and updates category id otherwise.
func (p *CategoriesPage) Save(ctx context.Context, id int, form CategoryForm) (*api.Category, error) {
	in, err := form.Validate()
	if err != nil {
		p.setError(p.msg(msgInvalidForm))
		return nil, err
	}

	var saved *api.Category
	if id == 0 {
		saved, err = p.backend.CreateCategory(ctx, in)
	} else {
		saved, err = p.backend.UpdateCategory(ctx, id, in)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "save category failed", "id", id, "error", err)
		p.setError(p.userMessage(err, msgSaveCategory))
		return nil, err
	}

	_ = p.Refresh(ctx)
	return saved, nil
}

// ExportCSV encodes the loaded categories.
func (p *CategoriesPage) ExportCSV() (*Export, error) {
	p.mu.Lock()
	records := api.CategoryRecords(p.categories)
	p.mu.Unlock()
	return p.encode(core.KindCategories, records)
}
