package main

import (
	"bytes"
	"go/format"
	"os"
	"testing"

	"github.com/ideamans/go-l10n"
)

func TestLexicon_Formatted(t *testing.T) {
	src, err := os.ReadFile("i18n.go")
	if err != nil {
		t.Fatal(err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("format.Source failed: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Error("i18n.go is not gofmt-formatted")
	}
}

func TestLexicon_Japanese(t *testing.T) {
	l10n.ForceLanguage("ja")
	defer l10n.ResetLanguage()

	if got := l10n.T("Show version information"); got != "バージョン情報を表示" {
		t.Errorf("unexpected translation: %s", got)
	}
	if got := l10n.F("%d containers failed", 3); got != "3 コンテナの処理に失敗しました" {
		t.Errorf("unexpected translation: %s", got)
	}
}
