package pages

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
)

func TestCategoriesPage_Activate(t *testing.T) {
	stub := newStub()
	page := NewCategoriesPage(Deps{Backend: stub})

	require.NoError(t, page.Activate(context.Background()))
	assert.Len(t, page.State().Categories, 2)

	stub.setErr("ListCategories", errors.New("connection refused"))
	require.Error(t, page.Refresh(context.Background()))

	state := page.State()
	assert.Equal(t, "Erro ao carregar categorias", state.Error)
	assert.Empty(t, state.Categories)
	assert.False(t, state.Loading)
}

func TestCategoriesPage_Upload(t *testing.T) {
	t.Run("rejects a sales file", func(t *testing.T) {
		stub := newStub()
		page := NewCategoriesPage(Deps{Backend: stub})

		_, err := page.Upload(context.Background(), "vendas.csv",
			strings.NewReader("id,product_id,quantity,total_price,date\n1,1,1,10,2024-01-01"))
		require.ErrorIs(t, err, ErrRejected)

		var rej *RejectionError
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, core.KindCategories, rej.Verdict.Kind)
		assert.Equal(t, "CSV inválido! Certifique-se de que está enviando um arquivo de Categorias.", page.State().Error)
		assert.Zero(t, stub.callCount("UploadCSV"))
	})

	t.Run("forwards a categories file", func(t *testing.T) {
		stub := newStub()
		page := NewCategoriesPage(Deps{Backend: stub})

		_, err := page.Upload(context.Background(), "categorias.csv",
			strings.NewReader("\ufeffName,Description\nLivros,Papel"))
		require.NoError(t, err)
		require.Len(t, stub.uploads, 1)
		assert.Equal(t, core.KindCategories, stub.uploads[0].kind)
		assert.Equal(t, "categorias.csv", stub.uploads[0].name)
	})

	t.Run("failed reload keeps the load error", func(t *testing.T) {
		stub := newStub()
		page := NewCategoriesPage(Deps{Backend: stub})
		stub.setErr("ListCategories", errors.New("connection refused"))

		_, err := page.Upload(context.Background(), "categorias.csv",
			strings.NewReader("name,description\nLivros,Papel"))
		require.NoError(t, err)

		state := page.State()
		assert.Equal(t, "Erro ao carregar categorias", state.Error)
		assert.Empty(t, state.Notice)
		assert.False(t, state.Loading)
	})
}

func TestCategoriesPage_Save(t *testing.T) {
	stub := newStub()
	page := NewCategoriesPage(Deps{Backend: stub})

	created, err := page.Save(context.Background(), 0, CategoryForm{Name: " Livros "})
	require.NoError(t, err)
	assert.Equal(t, "Livros", created.Name)
	assert.Len(t, page.State().Categories, 3)

	_, err = page.Save(context.Background(), 0, CategoryForm{})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	_, ok := verrs.Field("name")
	assert.True(t, ok)

	stub.setErr("UpdateCategory", &api.Error{Status: http.StatusNotFound, Detail: "Categoria não encontrada"})
	_, err = page.Save(context.Background(), 42, CategoryForm{Name: "X"})
	require.Error(t, err)
	assert.Equal(t, "Categoria não encontrada", page.State().Error)

	stub.setErr("CreateCategory", errors.New("connection reset by peer"))
	_, err = page.Save(context.Background(), 0, CategoryForm{Name: "X"})
	require.Error(t, err)
	assert.Equal(t, "Erro ao salvar categoria", page.State().Error)
}

func TestCategoriesPage_ExportCSV(t *testing.T) {
	stub := newStub()
	stub.categories[0].Description = strPtr("TVs, rádios")
	page := NewCategoriesPage(Deps{Backend: stub, Quote: true})
	require.NoError(t, page.Activate(context.Background()))

	export, err := page.ExportCSV()
	require.NoError(t, err)
	assert.Equal(t, "categorias.csv", export.FileName)
	assert.Equal(t, "id,name,description\n1,Eletrônicos,\"TVs, rádios\"\n2,Áudio,", string(export.Data))
}
