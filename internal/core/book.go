package core

import (
	"maps"
	"time"
)

// Book is the canonical record assembled from one valid spreadsheet row.
type Book struct {
	ISBN           string          `json:"isbn"`
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle,omitempty"`
	Language       []string        `json:"language"`
	Dates          Dates           `json:"dates"`
	Contributors   []Contributor   `json:"contributors"`
	Prices         []Price         `json:"prices"`
	Pages          *int            `json:"pages,omitempty"`
	Publisher      string          `json:"publisher"`
	Imprint        string          `json:"imprint,omitempty"`
	Subjects       []Subject       `json:"subjects"`
	RegionalRights map[string]bool `json:"regionalRights"`
	Descriptions   []Description   `json:"descriptions"`
}

// Dates holds the book's significant dates.
type Dates struct {
	Publish *time.Time `json:"publish,omitempty"`
}

// Contributor is a person credited on the book.
type Contributor struct {
	Names     Names  `json:"names"`
	Role      string `json:"role"`
	Biography string `json:"biography,omitempty"`
	Media     *Media `json:"media,omitempty"`
}

// Names carries the display and sort forms of a contributor name.
type Names struct {
	Display string `json:"display"`
	Sort    string `json:"sort"`
}

// Media groups a contributor's images.
type Media struct {
	Images []Image `json:"images"`
}

// Image is a classified set of URIs pointing at one picture.
type Image struct {
	Classification []Classification `json:"classification"`
	URIs           []URI            `json:"uris"`
}

// Classification is a realm/id pair.
type Classification struct {
	Realm string `json:"realm"`
	ID    string `json:"id"`
}

// URI is a typed link.
type URI struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// Price is a list price. Currency is filled in from the row's currency column.
type Price struct {
	Amount      float64 `json:"amount"`
	IncludesTax bool    `json:"includesTax"`
	Currency    string  `json:"currency"`
}

// Subject is a subject classification code.
type Subject struct {
	Type string `json:"type"`
	Code string `json:"code"`
	Main bool   `json:"main,omitempty"`
}

// Description is a sanitized HTML description.
type Description struct {
	Content        string           `json:"content"`
	Classification []Classification `json:"classification"`
}

// MainSubject returns the subject flagged as main, if any.
func (b Book) MainSubject() (Subject, bool) {
	for _, s := range b.Subjects {
		if s.Main {
			return s, true
		}
	}
	return Subject{}, false
}

// merge folds a validator fragment into the book.
func (b *Book) merge(f Fragment) {
	if f.ISBN != "" {
		b.ISBN = f.ISBN
	}
	if f.Title != "" {
		b.Title = f.Title
	}
	if f.Subtitle != "" {
		b.Subtitle = f.Subtitle
	}
	if f.PublishDate != nil {
		t := *f.PublishDate
		b.Dates.Publish = &t
	}
	if f.Pages != nil {
		n := *f.Pages
		b.Pages = &n
	}
	if f.Publisher != "" {
		b.Publisher = f.Publisher
	}
	if f.Imprint != "" {
		b.Imprint = f.Imprint
	}

	b.Language = append(b.Language, f.Language...)
	b.Contributors = append(b.Contributors, f.Contributors...)
	b.Prices = append(b.Prices, f.Prices...)
	b.Subjects = append(b.Subjects, f.Subjects...)
	b.Descriptions = append(b.Descriptions, f.Descriptions...)

	if len(f.RegionalRights) > 0 {
		if b.RegionalRights == nil {
			b.RegionalRights = make(map[string]bool, len(f.RegionalRights))
		}
		maps.Copy(b.RegionalRights, f.RegionalRights)
	}
}

// applyCurrency stamps currency onto every accumulated price.
func (b *Book) applyCurrency(currency string) {
	for i := range b.Prices {
		b.Prices[i].Currency = currency
	}
}
