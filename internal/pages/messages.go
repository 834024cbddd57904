package pages

import "github.com/JonMunkholm/smartmart/internal/core"

type messageKey int

const (
	msgLoadProducts messageKey = iota
	msgLoadCategories
	msgLoadSales
	msgLoadDashboard
	msgUpload
	msgSaveProduct
	msgDeleteProduct
	msgSaveCategory
	msgCreateSale
	msgUpdateSale
	msgNeedCategory
	msgReport
	msgCollection
	msgInvalidForm
)

var catalog = map[string]map[messageKey]string{
	core.LocalePT: {
		msgLoadProducts:   "Erro ao carregar produtos",
		msgLoadCategories: "Erro ao carregar categorias",
		msgLoadSales:      "Erro ao carregar vendas",
		msgLoadDashboard:  "Erro ao carregar dados do dashboard",
		msgUpload:         "Erro ao fazer upload do arquivo",
		msgSaveProduct:    "Erro ao salvar produto",
		msgDeleteProduct:  "Erro ao excluir produto",
		msgSaveCategory:   "Erro ao salvar categoria",
		msgCreateSale:     "Erro ao adicionar venda",
		msgUpdateSale:     "Erro ao atualizar venda",
		msgNeedCategory:   "É necessário criar uma categoria antes de adicionar produtos",
		msgReport:         "Erro ao exportar relatório",
		msgCollection:     "Erro ao baixar a coleção da API",
		msgInvalidForm:    "Verifique os campos do formulário",
	},
	core.LocaleEN: {
		msgLoadProducts:   "Could not load products",
		msgLoadCategories: "Could not load categories",
		msgLoadSales:      "Could not load sales",
		msgLoadDashboard:  "Could not load dashboard data",
		msgUpload:         "Could not upload the file",
		msgSaveProduct:    "Could not save the product",
		msgDeleteProduct:  "Could not delete the product",
		msgSaveCategory:   "Could not save the category",
		msgCreateSale:     "Could not add the sale",
		msgUpdateSale:     "Could not update the sale",
		msgNeedCategory:   "Create a category before adding products",
		msgReport:         "Could not export the report",
		msgCollection:     "Could not download the API collection",
		msgInvalidForm:    "Check the form fields",
	},
}

// message returns the text for key in locale, falling back to pt-BR.
func message(locale string, key messageKey) string {
	if m, ok := catalog[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return catalog[core.LocalePT][key]
}
