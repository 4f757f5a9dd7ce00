package querylang

import (
	"regexp"
	"strconv"
	"strings"
)

var hexEntity = regexp.MustCompile(`&([0-9a-fA-F]{1,4});`)

// DecodeValue strips the surrounding double quotes from a raw pair value and
// resolves &HHHH; entities to the code point they name.
func DecodeValue(raw string) string {
	value := raw
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}
	if !strings.Contains(value, "&") {
		return value
	}
	return hexEntity.ReplaceAllStringFunc(value, func(m string) string {
		code, err := strconv.ParseUint(m[1:len(m)-1], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
}

// EncodeValue is the inverse of DecodeValue: it quotes value, replacing the
// characters a quoted value cannot hold with entities.
func EncodeValue(value string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"', '&':
			sb.WriteString("&" + strconv.FormatInt(int64(r), 16) + ";")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
