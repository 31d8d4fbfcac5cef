package lang

func init() {
	Register(&LanguageSpec{
		Language:       Groovy,
		FileExtensions: []string{".groovy", ".gradle"},
		FunctionNodeTypes: []string{
			"function_definition", // def greet() {} or void greet() {}
		},
		ClassNodeTypes: []string{
			"class_definition", // class Foo extends Bar {}
		},
		FieldNodeTypes:  []string{},
		ModuleNodeTypes: []string{"source_file"},
		CallNodeTypes:   []string{"function_call", "juxt_function_call"},
		ImportNodeTypes: []string{"groovy_import"},
	})
}
