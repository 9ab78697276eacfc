package recommend

import (
	"strings"
	"unicode/utf8"

	"pantry-recommender/internal/models"

	"golang.org/x/text/unicode/norm"
)

// 比對規則名稱
const (
	RuleExact     = "exact"
	RuleSubstring = "substring"
	RuleSynonym   = "synonym"
	RuleFuzzy     = "fuzzy"
)

// fuzzyMinRunes 模糊比對的最短長度
const fuzzyMinRunes = 3

// Normalize NFC 組合、轉小寫並去除前後空白
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

// PantryIndex 每次推薦建立一次的庫存索引
// 保留庫存原順序；正規化後同名者只保留第一筆，空名稱略過
type PantryIndex struct {
	entries []indexEntry
	byName  map[string]int
}

type indexEntry struct {
	name string
	item models.PantryItem
}

// NewPantryIndex 建立庫存索引
func NewPantryIndex(items []models.PantryItem) *PantryIndex {
	idx := &PantryIndex{
		entries: make([]indexEntry, 0, len(items)),
		byName:  make(map[string]int, len(items)),
	}
	for _, item := range items {
		name := Normalize(item.Name)
		if name == "" {
			continue
		}
		if _, dup := idx.byName[name]; dup {
			continue
		}
		idx.byName[name] = len(idx.entries)
		idx.entries = append(idx.entries, indexEntry{name: name, item: item})
	}
	return idx
}

// Len 索引中的食材數
func (p *PantryIndex) Len() int {
	return len(p.entries)
}

// Rule 具名的比對規則，輸入皆已正規化
type Rule struct {
	Name  string
	Match func(ingredient, pantry string) bool
}

// Matcher 食材名稱比對器，依規則優先順序比對
type Matcher struct {
	rules []Rule
}

// NewMatcher 建立比對器，synonyms 為 nil 時使用內建同義詞表
func NewMatcher(synonyms *SynonymTable) *Matcher {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Matcher{
		rules: []Rule{
			{Name: RuleExact, Match: exactMatch},
			{Name: RuleSubstring, Match: substringMatch},
			{Name: RuleSynonym, Match: synonyms.Related},
			{Name: RuleFuzzy, Match: fuzzyMatch},
		},
	}
}

// Rules 回傳比對規則（依優先順序）
func (m *Matcher) Rules() []Rule {
	return m.rules
}

// FindMatch 找出與食材名稱相符的庫存項目
func (m *Matcher) FindMatch(ingredientName string, index *PantryIndex) (models.PantryItem, bool) {
	_, item, ok := m.Explain(ingredientName, index)
	return item, ok
}

// Explain 同 FindMatch，另回傳命中的規則名稱
// 高優先規則命中任一庫存項目即勝出；同一規則內取庫存順序第一筆
func (m *Matcher) Explain(ingredientName string, index *PantryIndex) (string, models.PantryItem, bool) {
	name := Normalize(ingredientName)
	if name == "" || index == nil {
		return "", models.PantryItem{}, false
	}

	for _, rule := range m.rules {
		// exact 直接查表
		if rule.Name == RuleExact {
			if i, ok := index.byName[name]; ok {
				return rule.Name, index.entries[i].item, true
			}
			continue
		}
		for _, e := range index.entries {
			if rule.Match(name, e.name) {
				return rule.Name, e.item, true
			}
		}
	}
	return "", models.PantryItem{}, false
}

func exactMatch(ingredient, pantry string) bool {
	return ingredient == pantry
}

func substringMatch(ingredient, pantry string) bool {
	return strings.Contains(ingredient, pantry) || strings.Contains(pantry, ingredient)
}

func fuzzyMatch(ingredient, pantry string) bool {
	if utf8.RuneCountInString(ingredient) < fuzzyMinRunes || utf8.RuneCountInString(pantry) < fuzzyMinRunes {
		return false
	}
	return substringMatch(ingredient, pantry)
}
