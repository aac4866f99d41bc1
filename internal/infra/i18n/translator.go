package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// DefaultLang is the language the bot was written in; other locales fall back to it.
const DefaultLang = "ru"

// Translator renders bot messages from a flat key -> format map.
type Translator struct {
	lang     string
	messages map[string]string
	fallback *Translator
}

// NewTranslator reads locales/<lang>.yaml from fsys.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	file := path.Join("locales", lang+".yaml")
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", file, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("locale %s: %w", lang, err)
	}
	t.lang = lang
	return t, nil
}

// Load picks lang from the embedded locales. Unknown languages get DefaultLang;
// keys missing in lang are served from DefaultLang.
func Load(lang string) (*Translator, error) {
	def, err := NewTranslator(LocalesFS, DefaultLang)
	if err != nil {
		return nil, err
	}
	if lang == "" || lang == DefaultLang {
		return def, nil
	}
	t, err := NewTranslator(LocalesFS, lang)
	if err != nil {
		return def, nil
	}
	t.fallback = def
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	messages := make(map[string]string)
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &Translator{messages: messages}, nil
}

// T formats the message for key with args. Unknown keys come back as-is.
func (t *Translator) T(key string, args ...any) string {
	format, ok := t.lookup(key)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func (t *Translator) lookup(key string) (string, bool) {
	for cur := t; cur != nil; cur = cur.fallback {
		if s, ok := cur.messages[key]; ok {
			return s, true
		}
	}
	return "", false
}

func (t *Translator) Lang() string { return t.lang }
