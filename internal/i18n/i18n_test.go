package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLang(t *testing.T) {
	tests := []struct {
		code string
		want Lang
		ok   bool
	}{
		{"en", English, true},
		{"EN-us", English, true},
		{"zh", Chinese, true},
		{"zh_CN", Chinese, true},
		{" zh-Hans ", Chinese, true},
		{"fr", English, false},
		{"", English, false},
		{"english", English, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := ParseLang(tt.code)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetLanguage(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	assert.Equal(t, Chinese, SetLanguage("zh"))
	assert.Equal(t, Chinese, Language())
	assert.Equal(t, "注册失败", T(MsgRegisterFailed))

	// Unknown codes fall back to English
	assert.Equal(t, English, SetLanguage("klingon"))
	assert.Equal(t, "Registration failed", T(MsgRegisterFailed))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Task created: t1", TIn(English, MsgTaskCreated, "t1"))
	assert.Equal(t, "Processing: scanning...", TIn(English, MsgProcessing, "scanning"))
	assert.Equal(t, "Registration successful! Trust Score: 87", TIn(English, MsgRegistered, "87"))
	assert.Equal(t, "任务已创建: t1", TIn(Chinese, MsgTaskCreated, "t1"))

	// Unknown keys render as themselves
	assert.Equal(t, "no.such.key", TIn(English, Key("no.such.key")))
}

func TestCatalogsAreComplete(t *testing.T) {
	for key := range messages[English] {
		_, ok := messages[Chinese][key]
		assert.True(t, ok, "missing zh translation for %s", key)
	}
	for key := range messages[Chinese] {
		_, ok := messages[English][key]
		assert.True(t, ok, "zh key %s has no en source", key)
	}
}

func TestPages(t *testing.T) {
	for _, lang := range Languages {
		for _, name := range PageNames {
			p, ok := PageIn(lang, name)
			assert.True(t, ok, "%s/%s", lang, name)
			assert.NotEmpty(t, p.Title)
			assert.NotEmpty(t, p.Sections)
		}
	}

	_, ok := PageIn(English, "pricing")
	assert.False(t, ok)

	home, _ := PageIn(English, "home")
	assert.Equal(t, "Explore the Agent Universe", home.Title)
	assert.Len(t, home.Sections[0].Items, 3)
}
