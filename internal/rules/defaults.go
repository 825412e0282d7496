package rules

// Default returns the starter rule set for the default category tree.
func Default() *File {
	return &File{
		Categories: Categories{
			{
				Name: "Alimentación",
				Subcategories: []SubcategoryRules{
					{Name: "Supermercado", Keywords: []string{"SUPERMERCADO", "JUMBO", "LIDER", "UNIMARC", "TOTTUS", "SANTA ISABEL"}},
					{Name: "Restaurantes", Keywords: []string{"RESTAURANT", "SUSHI", "STARBUCKS", "RAPPI"}},
				},
			},
			{
				Name:     "Transporte",
				Keywords: []string{"UBER", "CABIFY"},
				Subcategories: []SubcategoryRules{
					{Name: "Transporte público", Keywords: []string{"METRO DE SANTIAGO", "RED MOVILIDAD", "CARGA BIP"}},
					{Name: "Combustible", Keywords: []string{"COPEC", "SHELL", "PETROBRAS", "ARAMCO"}},
				},
			},
			{
				Name: "Servicios básicos",
				Subcategories: []SubcategoryRules{
					{Name: "Luz", Keywords: []string{"ENEL", "CGE"}},
					{Name: "Agua", Keywords: []string{"AGUAS ANDINAS", "ESSBIO"}},
					{Name: "Gas", Keywords: []string{"METROGAS", "ABASTIBLE", "LIPIGAS"}},
					{Name: "Internet", Keywords: []string{"VTR", "MOVISTAR", "ENTEL"}},
				},
			},
			{
				Name: "Ingresos",
				Subcategories: []SubcategoryRules{
					{Name: "Sueldo", Keywords: []string{"SUELDO", "REMUNERACION"}},
				},
			},
		},
	}
}
