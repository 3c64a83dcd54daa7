package driver

import (
	"stormatter/internal/diag"
	"stormatter/internal/lexer"
	"stormatter/internal/source"
	"stormatter/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes a single file and collects its diagnostics. A file that
// fails to load still yields a result: the failure lands in the bag as an
// I/O diagnostic so callers render it like any other error.
func Tokenize(path string, maxDiagnostics int) *TokenizeResult {
	// Создаём FileSet и диагностический пакет
	fs := source.NewFileSet()
	bag := diag.NewBag(maxDiagnostics)

	fileID, err := fs.Load(path)
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  "failed to load file: " + err.Error(),
			Primary:  source.Span{},
		})
		return &TokenizeResult{FileSet: fs, Bag: bag}
	}
	file := fs.Get(fileID)

	// Создаём лексер с reporter адаптером для диагностики
	reporterAdapter := &lexer.ReporterAdapter{Bag: bag}
	opts := lexer.Options{
		Reporter: reporterAdapter.Reporter(),
	}

	// Токенизация: собираем все токены до EOF
	tokens := lexer.Tokenize(file, opts)

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}
}
