package command

import (
	"testing"

	"github.com/matryer/is"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		want    CommandMsg
		wantErr bool
	}{
		{line: "group Side Projects", want: CommandMsg{Name: CmdGroup, Arg: "Side Projects"}},
		{line: "  g   Work ", want: CommandMsg{Name: CmdGroup, Arg: "Work"}},
		{line: "search", want: CommandMsg{Name: CmdSearch}},
		{line: "SORT title", want: CommandMsg{Name: CmdSort, Arg: "title"}},
		{line: "export out.pdf", want: CommandMsg{Name: CmdExport, Arg: "out.pdf"}},
		{line: "q", want: CommandMsg{Name: CmdQuit}},
		{line: "group", wantErr: true},
		{line: "delete 4", wantErr: true},
		{line: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			is := is.New(t)
			got, err := Parse(tt.line)
			if tt.wantErr {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(got, tt.want)
		})
	}
}
