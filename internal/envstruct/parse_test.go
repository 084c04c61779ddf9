package envstruct_test

import (
	"strings"
	"testing"
	"time"

	"github.com/myrjola/whodunit/internal/envstruct"
	"github.com/stretchr/testify/require"
)

func TestPopulate(t *testing.T) {
	unset := func(_ string) (string, bool) { return "", false }
	type args struct {
		v         any
		lookupEnv func(string) (string, bool)
	}
	tests := []struct {
		name    string
		args    args
		want    any
		wantErr error
	}{
		{
			name:    "nil",
			args:    args{v: nil, lookupEnv: unset},
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name:    "not pointer",
			args:    args{v: struct{}{}, lookupEnv: unset},
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "missing env without default",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr string `env:"WHODUNIT_ADDR"`
				}{},
				lookupEnv: unset,
			},
			wantErr: envstruct.ErrEnvNotSet,
		},
		{
			name: "picks correct env variable",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr       string `env:"WHODUNIT_ADDR"`
					SQLiteURL  string `env:"WHODUNIT_SQLITE_URL"`
					OtherValue string
				}{},
				lookupEnv: func(s string) (string, bool) { return strings.ToLower(s), true },
			},
			want: &struct {
				Addr       string
				SQLiteURL  string
				OtherValue string
			}{Addr: "whodunit_addr", SQLiteURL: "whodunit_sqlite_url", OtherValue: ""},
		},
		{
			name: "handles defaults of every supported kind",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Addr    string        `env:"WHODUNIT_ADDR" envDefault:"localhost:4000"`
					Secure  bool          `env:"WHODUNIT_SECURE_COOKIES" envDefault:"true"`
					Budget  int           `env:"WHODUNIT_QUESTION_BUDGET" envDefault:"24"`
					Lie     float64       `env:"WHODUNIT_LIE_PROBABILITY" envDefault:"0.5"`
					Timeout time.Duration `env:"WHODUNIT_RESPONDER_TIMEOUT" envDefault:"20s"`
				}{},
				lookupEnv: unset,
			},
			want: &struct {
				Addr    string
				Secure  bool
				Budget  int
				Lie     float64
				Timeout time.Duration
			}{Addr: "localhost:4000", Secure: true, Budget: 24, Lie: 0.5, Timeout: 20 * time.Second},
		},
		{
			name: "rejects malformed numbers",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Budget int `env:"WHODUNIT_QUESTION_BUDGET"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "many", true },
			},
			wantErr: envstruct.ErrInvalidValue,
		},
		{
			name: "rejects unsupported kinds",
			args: args{
				v: &struct { //nolint:exhaustruct // populated later
					Seeds []int `env:"WHODUNIT_SEEDS"`
				}{},
				lookupEnv: func(_ string) (string, bool) { return "1,2", true },
			},
			wantErr: envstruct.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.args.v
			err := envstruct.Populate(v, tt.args.lookupEnv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, tt.want, v)
		})
	}
}
