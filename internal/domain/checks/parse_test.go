package checks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDrugList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"only blanks", " \n\n  \n", nil},
		{"single", "アスピリン", []string{"アスピリン"}},
		{"blank lines filtered", "A\n\n  \nB\n", []string{"A", "B"}},
		{"crlf and padding", "  ワーファリン\r\n プラビックス \r\n", []string{"ワーファリン", "プラビックス"}},
		{"order kept", "C\nA\nB", []string{"C", "A", "B"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDrugList(tc.raw)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 10, 16, 23, 59, 0, 0, time.Local)

	assert.ErrorIs(t, Validate(nil, "2026-10-20", now), ErrMissingInput)
	assert.ErrorIs(t, Validate([]string{"A"}, "", now), ErrMissingInput)
	assert.ErrorIs(t, Validate([]string{"A"}, "  ", now), ErrMissingInput)
	assert.ErrorIs(t, Validate([]string{"A"}, "2026/10/20", now), ErrInvalidDate)
	assert.ErrorIs(t, Validate([]string{"A"}, "2026-02-30", now), ErrInvalidDate)
	assert.ErrorIs(t, Validate([]string{"A"}, "2026-10-15", now), ErrDateInPast)
	assert.ErrorIs(t, Validate(make([]string, MaxDrugs+1), "2026-10-20", now), ErrTooManyDrugs)

	assert.NoError(t, Validate([]string{"A"}, "2026-10-16", now), "today is allowed")
	assert.NoError(t, Validate([]string{"A"}, "2027-01-01", now))
	assert.NoError(t, Validate(make([]string, MaxDrugs), "2026-10-20", now))
}

func TestResultLine(t *testing.T) {
	assert.Equal(t, "A: 休薬不要", Result{Drug: "A", Text: "休薬不要", HasOutput: true}.Line())
	assert.Equal(t, "B: 結果が取得できませんでした。", Result{Drug: "B"}.Line())
}

func TestCheckLines(t *testing.T) {
	ok := Check{Status: StatusSucceeded, Results: []Result{{Drug: "A", Text: "x", HasOutput: true}, {Drug: "B"}}}
	assert.Equal(t, []string{"A: x", "B: 結果が取得できませんでした。"}, ok.Lines())

	failed := Check{Status: StatusFailed, Error: "boom"}
	assert.Equal(t, []string{"エラーが発生しました: boom。サーバーログで詳細を確認してください。"}, failed.Lines())
}
