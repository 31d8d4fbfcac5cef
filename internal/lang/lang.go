package lang

// Language represents a supported programming language.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	CPP        Language = "cpp"
	TSX        Language = "tsx"
	CSharp     Language = "c-sharp"
	PHP        Language = "php"
	Lua        Language = "lua"
	Scala      Language = "scala"
	JSON       Language = "json" // Not in AllLanguages(); no LanguageSpec or tree-sitter grammar

	// Extra grammars carried from the teacher's full tree-sitter stack.
	// Each gets a generic function/class/reference extraction (no Rich
	// extractor) so get_file_outline and find_usages still work on them.
	Bash       Language = "bash"
	C          Language = "c"
	CSS        Language = "css"
	Dart       Language = "dart"
	Dockerfile Language = "dockerfile"
	Elixir     Language = "elixir"
	Erlang     Language = "erlang"
	Groovy     Language = "groovy"
	HCL        Language = "hcl"
	HTML       Language = "html"
	Haskell    Language = "haskell"
	Kotlin     Language = "kotlin"
	OCaml      Language = "ocaml"
	ObjectiveC Language = "objective-c"
	Perl       Language = "perl"
	R          Language = "r"
	Ruby       Language = "ruby"
	SCSS       Language = "scss"
	SQL        Language = "sql"
	Swift      Language = "swift"
	TOML       Language = "toml"
	YAML       Language = "yaml"
	Zig        Language = "zig"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	names := make([]Language, 0, len(byLanguage))
	for l := range byLanguage {
		names = append(names, l)
	}
	return names
}

// LanguageSpec defines the tree-sitter node types for a language, plus the
// symbol-kind mapping the symbol extractor needs to turn raw node kinds into
// the payload vocabulary query handlers expect (function/class/method/...).
//
// Full-fidelity extraction (doc comments, JSX heuristics, Unity tagging) is
// implemented only for the languages named by the indexed-symbol table
// (JS/TS/TSX, Python, C#). Every other registered grammar still participates
// in get_file_outline/find_usages through GenericFunctionKind/GenericClassKind
// below rather than sitting unused.
type LanguageSpec struct {
	Language          Language
	FileExtensions    []string
	FunctionNodeTypes []string
	ClassNodeTypes    []string
	FieldNodeTypes    []string // tree-sitter node kinds for struct/class fields
	ModuleNodeTypes   []string
	CallNodeTypes     []string
	ImportNodeTypes   []string
	ImportFromTypes   []string
	PackageIndicators []string

	// Rich marks the languages internal/symbols handles with a dedicated
	// extractor (JS/TS/TSX, Python and C#). Set by those languages' specs in
	// this package; left false for the rest.
	Rich bool
}

// GenericFunctionKind/GenericClassKind/GenericReferenceKind are the payload
// symbol kinds emitted for grammars without a Rich extractor.
const (
	GenericFunctionKind  = "function"
	GenericClassKind     = "class"
	GenericReferenceKind = "reference"
)

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// byLanguage maps a Language to its spec, de-duplicated from registry.
var byLanguage = map[Language]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
	byLanguage[spec.Language] = spec
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".go").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	return byLanguage[lang]
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}
