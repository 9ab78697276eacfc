package recommend

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// 同義詞檔案的合併模式
const (
	SynonymsMerge   = "merge"
	SynonymsReplace = "replace"
)

// SynonymTable 食材概念同義詞表
// concepts: 標準名稱 → 變體集合（含標準名稱本身）
// reverse: 名稱 → 所屬概念
type SynonymTable struct {
	concepts map[string]map[string]struct{}
	reverse  map[string][]string
}

// defaultSynonyms 內建同義詞（含葡萄牙文變體）
var defaultSynonyms = map[string][]string{
	"chicken": {"chicken breast", "chicken thigh", "frango"},
	"tomato":  {"tomatoes", "tomate"},
	"onion":   {"onions", "cebola"},
	"rice":    {"arroz"},
	"pasta":   {"macarrão", "spaghetti", "penne"},
	"cheese":  {"queijo", "mozzarella", "cheddar"},
	"milk":    {"leite"},
	"egg":     {"eggs", "ovo", "ovos"},
	"oil":     {"olive oil", "óleo"},
	"salt":    {"sal"},
	"pepper":  {"pimenta"},
	"garlic":  {"alho"},
	"butter":  {"manteiga"},
}

// NewSynonymTable 由 概念 → 變體 建立同義詞表，所有名稱皆會正規化
func NewSynonymTable(entries map[string][]string) *SynonymTable {
	t := &SynonymTable{
		concepts: make(map[string]map[string]struct{}),
		reverse:  make(map[string][]string),
	}
	t.add(entries)
	return t
}

// DefaultSynonyms 回傳內建同義詞表
func DefaultSynonyms() *SynonymTable {
	return NewSynonymTable(defaultSynonyms)
}

// Merge 回傳合併後的新表，原表不變
func (t *SynonymTable) Merge(entries map[string][]string) *SynonymTable {
	merged := NewSynonymTable(nil)
	for concept, variants := range t.concepts {
		list := make([]string, 0, len(variants))
		for v := range variants {
			list = append(list, v)
		}
		merged.add(map[string][]string{concept: list})
	}
	merged.add(entries)
	return merged
}

func (t *SynonymTable) add(entries map[string][]string) {
	// 依鍵排序使 reverse 中的概念順序固定
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		concept := Normalize(raw)
		if concept == "" {
			continue
		}
		variants, ok := t.concepts[concept]
		if !ok {
			variants = make(map[string]struct{})
			t.concepts[concept] = variants
		}
		t.link(concept, concept)
		for _, v := range entries[raw] {
			name := Normalize(v)
			if name == "" {
				continue
			}
			variants[name] = struct{}{}
			t.link(name, concept)
		}
	}
}

func (t *SynonymTable) link(name, concept string) {
	for _, c := range t.reverse[name] {
		if c == concept {
			return
		}
	}
	t.reverse[name] = append(t.reverse[name], concept)
}

// Concepts 回傳名稱所屬的概念，名稱需已正規化
func (t *SynonymTable) Concepts(name string) []string {
	return t.reverse[name]
}

// Related 兩個已正規化的名稱是否屬於同一概念
func (t *SynonymTable) Related(a, b string) bool {
	ca := t.reverse[a]
	if len(ca) == 0 {
		return false
	}
	for _, x := range ca {
		for _, y := range t.reverse[b] {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Len 概念數量
func (t *SynonymTable) Len() int {
	return len(t.concepts)
}

// LoadSynonyms 讀取同義詞檔（YAML 或 JSON，頂層鍵 synonyms）
// mode 為 merge 時擴充內建表，replace 時取代
func LoadSynonyms(path, mode string) (*SynonymTable, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var entries map[string][]string
	if err := v.UnmarshalKey("synonyms", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("synonyms file %s has no entries", path)
	}

	switch mode {
	case SynonymsReplace:
		return NewSynonymTable(entries), nil
	case SynonymsMerge, "":
		return DefaultSynonyms().Merge(entries), nil
	default:
		return nil, fmt.Errorf("unknown synonyms mode %q", mode)
	}
}
