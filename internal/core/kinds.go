package core

// The three kinds the SmartMart backend imports and exports. Their headers
// are fixed: they mirror the column names the remote importer reads.
func init() {
	Register(KindSpec{
		Kind:     KindProducts,
		Headers:  []string{"id", "name", "category_id", "price", "stock", "description"},
		Labels:   map[string]string{LocalePT: "Produtos", LocaleEN: "Products"},
		FileName: "produtos.csv",
	})

	Register(KindSpec{
		Kind:     KindCategories,
		Headers:  []string{"id", "name", "description"},
		Labels:   map[string]string{LocalePT: "Categorias", LocaleEN: "Categories"},
		FileName: "categorias.csv",
	})

	Register(KindSpec{
		Kind:     KindSales,
		Headers:  []string{"id", "product_id", "quantity", "total_price", "date"},
		Labels:   map[string]string{LocalePT: "Vendas", LocaleEN: "Sales"},
		FileName: "vendas.csv",
	})
}
