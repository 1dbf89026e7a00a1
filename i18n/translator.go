package i18n

import "fmt"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "min" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "not_null":
			return "null は許可されていません"
		case "coercion":
			return "値を変換できません"
		case "invalid_enum":
			return "許可された値のいずれかでなければなりません"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "pattern":
			return "パターンに一致しません"
		case "list_length":
			return "リストの要素数が一致しません"
		case "list_max":
			return "リストが長すぎます"
		case "list_min":
			return "リストが短すぎます"
		case "not_hashable":
			return "ハッシュ化できない値です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			if w := data["want"]; w != "" {
				if g := data["got"]; g != "" {
					return fmt.Sprintf("expected %s, got %s", w, g)
				}
				return "expected " + w
			}
			return "invalid type"
		case "not_null":
			return "value must not be null"
		case "coercion":
			if w := data["want"]; w != "" {
				return fmt.Sprintf("cannot interpret `%s` as %s", data["got"], w)
			}
			return "cannot interpret value"
		case "invalid_enum":
			if a := data["allowed"]; a != "" {
				return "value must be one of " + a
			}
			return "value is not an allowed choice"
		case "too_short":
			return "input too short"
		case "too_long":
			return "input too long"
		case "pattern":
			if r := data["regex"]; r != "" {
				return "does not match regex: " + r
			}
			return "does not match regex"
		case "list_length":
			return fmt.Sprintf("list must contain exactly %s items, but contains %s items", data["want"], data["got"])
		case "list_max":
			return fmt.Sprintf("list must contain at most %s items, but contains %s items", data["max"], data["got"])
		case "list_min":
			return fmt.Sprintf("list must contain at least %s items, but contains %s items", data["min"], data["got"])
		case "not_hashable":
			return "unhashable value: " + data["got"]
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
