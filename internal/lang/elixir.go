package lang

func init() {
	Register(&LanguageSpec{
		Language:       Elixir,
		FileExtensions: []string{".ex", ".exs"},
		// Elixir uses "call" for everything (homoiconic); def/defp/defmodule
		// and if/cond/case are all call nodes, distinguished by callee name.
		FunctionNodeTypes: []string{"call"},
		ClassNodeTypes:    []string{},
		ModuleNodeTypes:   []string{"source"},
		CallNodeTypes:     []string{"call", "dot"},
		ImportNodeTypes:   []string{"call"},
	})
}
