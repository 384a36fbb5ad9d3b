package core

import (
	"slices"
	"testing"
)

func TestRegroup(t *testing.T) {
	headers := []string{"Title", "Contributor 1", "Contributor 1 Role", "Contributor 2 Photo URL", "Contributor 10"}
	cells := []Cell{TextCell("T"), TextCell("Ann Author"), TextCell("author"), TextCell("https://x.test/p.png"), TextCell("ignored")}
	row := NewRow(headers, cells)

	g := Regroup(row)

	if got := g.Contributors[0][SubName].String(); got != "Ann Author" {
		t.Errorf("slot 1 Name = %q, want %q", got, "Ann Author")
	}
	if got := g.Contributors[0][SubRole].String(); got != "author" {
		t.Errorf("slot 1 Role = %q, want %q", got, "author")
	}
	if got := g.Contributors[1][SubPhotoURL].String(); got != "https://x.test/p.png" {
		t.Errorf("slot 2 Photo URL = %q", got)
	}
	if g.Contributors[2].Populated() {
		t.Error("slot 3 populated, want empty")
	}
	if !slices.Equal(row.Headers, headers) {
		t.Error("Regroup modified the input row")
	}
}

func TestRegroupFirstDuplicateWins(t *testing.T) {
	row := NewRow(
		[]string{"Contributor 1", "Contributor 1"},
		[]Cell{TextCell("First"), TextCell("Second")},
	)
	if got := Regroup(row).Contributors[0][SubName].String(); got != "First" {
		t.Errorf("Name = %q, want %q", got, "First")
	}
}

func TestValidateContributor(t *testing.T) {
	tests := []struct {
		name       string
		cells      ContributorCells
		wantOK     bool
		wantSuffix string
		wantSort   string
		wantRole   string
		wantPhoto  bool
		wantNone   bool
	}{
		{
			name:     "all empty is skipped",
			cells:    ContributorCells{},
			wantOK:   true,
			wantNone: true,
		},
		{
			name:     "name is inverted when sort name missing",
			cells:    ContributorCells{SubName: TextCell("Testy McTest"), SubRole: TextCell("Author")},
			wantOK:   true,
			wantSort: "McTest, Testy",
			wantRole: "A01",
		},
		{
			name: "explicit sort name is kept",
			cells: ContributorCells{
				SubName: TextCell("Ursula K. Le Guin"), SubInverted: TextCell("Le Guin, Ursula K."), SubRole: TextCell("author"),
			},
			wantOK:   true,
			wantSort: "Le Guin, Ursula K.",
			wantRole: "A01",
		},
		{
			name:     "translator role",
			cells:    ContributorCells{SubName: TextCell("Tom Trans"), SubRole: TextCell("TRANSLATOR")},
			wantOK:   true,
			wantSort: "Trans, Tom",
			wantRole: "B06",
		},
		{
			name: "photo becomes profile image",
			cells: ContributorCells{
				SubName: TextCell("Pic Person"), SubRole: TextCell("illustrator"), SubPhotoURL: TextCell("https://example.com/p.jpg"),
			},
			wantOK:    true,
			wantSort:  "Person, Pic",
			wantRole:  "A12",
			wantPhoto: true,
		},
		{
			name:   "missing name",
			cells:  ContributorCells{SubRole: TextCell("author")},
			wantOK: false,
		},
		{
			name:       "unknown role",
			cells:      ContributorCells{SubName: TextCell("Ann Author"), SubRole: TextCell("ghost")},
			wantOK:     false,
			wantSuffix: SubRole,
		},
		{
			name:       "empty role",
			cells:      ContributorCells{SubName: TextCell("Ann Author")},
			wantOK:     false,
			wantSuffix: SubRole,
		},
		{
			name: "bad photo url",
			cells: ContributorCells{
				SubName: TextCell("Ann Author"), SubRole: TextCell("author"), SubPhotoURL: TextCell("not a url"),
			},
			wantOK:     false,
			wantSuffix: SubPhotoURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := validateContributor(tt.cells)
			if out.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v (failure %+v)", out.OK(), tt.wantOK, out.Failure)
			}
			if !tt.wantOK {
				if out.Failure.Code != CodeContributorInvalid {
					t.Errorf("Code = %q, want %q", out.Failure.Code, CodeContributorInvalid)
				}
				if out.Failure.FieldSuffix != tt.wantSuffix {
					t.Errorf("FieldSuffix = %q, want %q", out.Failure.FieldSuffix, tt.wantSuffix)
				}
				return
			}
			if tt.wantNone {
				if len(out.Fragment.Contributors) != 0 {
					t.Errorf("Contributors = %v, want none", out.Fragment.Contributors)
				}
				return
			}

			c := out.Fragment.Contributors[0]
			if c.Names.Sort != tt.wantSort {
				t.Errorf("Sort = %q, want %q", c.Names.Sort, tt.wantSort)
			}
			if c.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", c.Role, tt.wantRole)
			}
			if (c.Media != nil) != tt.wantPhoto {
				t.Errorf("Media = %v, want photo %v", c.Media, tt.wantPhoto)
			}
		})
	}
}

func TestInvertName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Testy McTest", "McTest, Testy"},
		{"Mary Ann Evans", "Ann Evans, Mary"},
		{"Plato", ", Plato"},
		{"  Spaced   Out  ", "Out, Spaced"},
	}
	for _, tt := range tests {
		if got := InvertName(tt.in); got != tt.want {
			t.Errorf("InvertName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
