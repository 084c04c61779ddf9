package content_test

import (
	"github.com/myrjola/whodunit/internal/content"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDefault(t *testing.T) {
	c := content.Default()
	require.GreaterOrEqual(t, len(c.Suspects), content.MinSuspects)
	for _, cause := range c.Causes {
		require.GreaterOrEqual(t, len(c.WeaponsFor(cause)), 2, cause)
	}
	require.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			doc:     "victims: [",
			wantErr: "unmarshal catalog",
		},
		{
			name:    "empty document",
			doc:     "{}",
			wantErr: "roster has 0 suspects",
		},
		{
			name: "single weapon for a cause",
			doc: `
causes: [shot]
weapons:
  - {id: revolver, name: revolver, cause: shot}
`,
			wantErr: `cause "shot" has 1 weapons`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := content.Parse([]byte(tt.doc))
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFill(t *testing.T) {
	got := content.Fill("{name} was seen near {location} around {time}",
		"name", "Sarah", "location", "the study", "time", "9:00 PM")
	require.Equal(t, "Sarah was seen near the study around 9:00 PM", got)
	require.Equal(t, "no placeholders", content.Fill("no placeholders"))
}
