package lang

func init() {
	Register(&LanguageSpec{
		Language:        SQL,
		FileExtensions:  []string{".sql"},
		ModuleNodeTypes: []string{"program"},
		FunctionNodeTypes: []string{
			"create_function",
		},
		ClassNodeTypes:  []string{},
		FieldNodeTypes:  []string{"column_definition"},
		CallNodeTypes:   []string{"function_call"},
		ImportNodeTypes: []string{},
	})
}
