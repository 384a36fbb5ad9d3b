// Package onix renders books as ONIX 2.1 product messages.
package onix

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/bookingest/internal/core"
)

// ONIX 2.1 code list values used in generated messages.
const (
	productIDTypeISBN13  = "15"
	titleTypeDistinctive = "01"
	textCaseSentence     = "02"
	textTypeMain         = "01"
	textFormatXHTML      = "05"
	textFormatDefault    = "06"
	priceExTax           = "01"
	priceIncTax          = "02"
	publishingRole       = "01"
	salesRightsExclusive = "01"
	languageRoleText     = "01"
	extentTypePages      = "00"
	extentUnitPages      = "03"
	subjectSchemeBISAC   = "10"
	mediaTypeImage       = "04"
	mediaFormatJPEG      = "03"
	mediaLinkURL         = "01"
)

// Message is the ONIXmessage root carrying a single product.
type Message struct {
	XMLName xml.Name `xml:"ONIXmessage"`
	Header  Header   `xml:"Header"`
	Product Product  `xml:"Product"`
}

type Header struct {
	MessageNote string `xml:"MessageNote,omitempty"`
}

type Product struct {
	ProductIdentifier ProductIdentifier `xml:"ProductIdentifier"`
	Title             Title             `xml:"Title"`
	OtherTexts        []OtherText       `xml:"OtherText"`
	Contributors      []Contributor     `xml:"Contributor"`
	SupplyDetail      SupplyDetail      `xml:"SupplyDetail"`
	PublicationDate   string            `xml:"PublicationDate,omitempty"`
	Imprint           *Imprint          `xml:"Imprint"`
	Publisher         *Publisher        `xml:"Publisher"`
	SalesRights       *SalesRights      `xml:"SalesRights"`
	Language          *Language         `xml:"Language"`
	Extent            *Extent           `xml:"Extent"`
	BASICMainSubject  string            `xml:"BASICMainSubject,omitempty"`
	Subjects          []Subject         `xml:"Subject"`
}

type ProductIdentifier struct {
	ProductIDType string `xml:"ProductIDType"`
	IDValue       string `xml:"IDValue"`
}

type Title struct {
	TitleType string     `xml:"TitleType"`
	TitleText CasedText  `xml:"TitleText"`
	Subtitle  *CasedText `xml:"Subtitle"`
}

type CasedText struct {
	TextCase string `xml:"textcase,attr"`
	Value    string `xml:",chardata"`
}

type OtherText struct {
	TextTypeCode string `xml:"TextTypeCode"`
	TextFormat   string `xml:"TextFormat"`
	Text         HTML   `xml:"Text"`
}

// HTML is markup carried verbatim inside a CDATA section.
type HTML struct {
	TextFormat string `xml:"textformat,attr,omitempty"`
	Content    string `xml:",cdata"`
}

// Contributor marshals as a Contributor element followed, when the
// contributor has a profile photo, by a sibling MediaFile element.
type Contributor struct {
	SequenceNumber     int    `xml:"SequenceNumber"`
	ContributorRole    string `xml:"ContributorRole"`
	PersonName         string `xml:"PersonName,omitempty"`
	PersonNameInverted string `xml:"PersonNameInverted,omitempty"`
	BiographicalNote   *HTML  `xml:"BiographicalNote"`

	MediaFile *MediaFile `xml:"-"`
}

type contributorElem Contributor

func (c Contributor) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeElement(contributorElem(c), start); err != nil {
		return err
	}
	if c.MediaFile == nil {
		return nil
	}
	return e.EncodeElement(c.MediaFile, xml.StartElement{Name: xml.Name{Local: "MediaFile"}})
}

type MediaFile struct {
	MediaFileTypeCode     string `xml:"MediaFileTypeCode"`
	MediaFileFormatCode   string `xml:"MediaFileFormatCode"`
	MediaFileLinkTypeCode string `xml:"MediaFileLinkTypeCode"`
	MediaFileLink         string `xml:"MediaFileLink"`
	DownloadCaption       string `xml:"DownloadCaption,omitempty"`
}

type SupplyDetail struct {
	Prices []Price `xml:"Price"`
}

type Price struct {
	PriceTypeCode string `xml:"PriceTypeCode"`
	PriceAmount   string `xml:"PriceAmount"`
	CurrencyCode  string `xml:"CurrencyCode,omitempty"`
}

type Imprint struct {
	ImprintName string `xml:"ImprintName"`
}

type Publisher struct {
	PublishingRole string `xml:"PublishingRole"`
	PublisherName  string `xml:"PublisherName"`
}

type SalesRights struct {
	SalesRightsType string `xml:"SalesRightsType"`
	RightsCountry   string `xml:"RightsCountry,omitempty"`
	RightsTerritory string `xml:"RightsTerritory,omitempty"`
}

type Language struct {
	LanguageRole string `xml:"LanguageRole"`
	LanguageCode string `xml:"LanguageCode"`
}

type Extent struct {
	ExtentType  string `xml:"ExtentType"`
	ExtentValue int    `xml:"ExtentValue"`
	ExtentUnit  string `xml:"ExtentUnit"`
}

type Subject struct {
	SubjectSchemeIdentifier string `xml:"SubjectSchemeIdentifier"`
	SubjectCode             string `xml:"SubjectCode"`
}

// Marshal renders book as an indented ONIX 2.1 document. note is written to
// the message header.
func Marshal(book core.Book, note string) ([]byte, error) {
	out, err := xml.MarshalIndent(NewMessage(book, note), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal onix for %s: %w", book.ISBN, err)
	}
	return append([]byte(xml.Header), out...), nil
}

// NewMessage maps a book onto the ONIX message structure.
func NewMessage(book core.Book, note string) Message {
	p := Product{
		ProductIdentifier: ProductIdentifier{ProductIDType: productIDTypeISBN13, IDValue: book.ISBN},
		Title: Title{
			TitleType: titleTypeDistinctive,
			TitleText: CasedText{TextCase: textCaseSentence, Value: book.Title},
		},
	}
	if book.Subtitle != "" {
		p.Title.Subtitle = &CasedText{TextCase: textCaseSentence, Value: book.Subtitle}
	}

	for _, d := range book.Descriptions {
		p.OtherTexts = append(p.OtherTexts, OtherText{
			TextTypeCode: textTypeMain,
			TextFormat:   textFormat(d.Content),
			Text:         HTML{Content: d.Content},
		})
	}

	for i, c := range book.Contributors {
		p.Contributors = append(p.Contributors, contributor(i+1, c))
	}

	for _, pr := range book.Prices {
		code := priceExTax
		if pr.IncludesTax {
			code = priceIncTax
		}
		p.SupplyDetail.Prices = append(p.SupplyDetail.Prices, Price{
			PriceTypeCode: code,
			PriceAmount:   fmt.Sprintf("%.2f", pr.Amount),
			CurrencyCode:  pr.Currency,
		})
	}

	if book.Dates.Publish != nil {
		p.PublicationDate = book.Dates.Publish.Format("20060102")
	}
	if book.Imprint != "" {
		p.Imprint = &Imprint{ImprintName: book.Imprint}
	}
	if book.Publisher != "" {
		p.Publisher = &Publisher{PublishingRole: publishingRole, PublisherName: book.Publisher}
	}
	p.SalesRights = salesRights(book.RegionalRights)

	if len(book.Language) > 0 {
		p.Language = &Language{LanguageRole: languageRoleText, LanguageCode: book.Language[0]}
	}
	if book.Pages != nil {
		p.Extent = &Extent{ExtentType: extentTypePages, ExtentValue: *book.Pages, ExtentUnit: extentUnitPages}
	}

	for _, s := range book.Subjects {
		if s.Main {
			p.BASICMainSubject = s.Code
			continue
		}
		p.Subjects = append(p.Subjects, Subject{SubjectSchemeIdentifier: subjectSchemeBISAC, SubjectCode: s.Code})
	}

	return Message{Header: Header{MessageNote: note}, Product: p}
}

func contributor(seq int, c core.Contributor) Contributor {
	out := Contributor{
		SequenceNumber:     seq,
		ContributorRole:    c.Role,
		PersonName:         c.Names.Display,
		PersonNameInverted: c.Names.Sort,
	}
	if c.Biography != "" {
		out.BiographicalNote = &HTML{TextFormat: textFormat(c.Biography), Content: c.Biography}
	}
	if link := profilePhoto(c); link != "" {
		out.MediaFile = &MediaFile{
			MediaFileTypeCode:     mediaTypeImage,
			MediaFileFormatCode:   mediaFormatJPEG,
			MediaFileLinkTypeCode: mediaLinkURL,
			MediaFileLink:         link,
			DownloadCaption:       c.Names.Display,
		}
	}
	return out
}

// profilePhoto returns the first remote URI of the contributor's profile image.
func profilePhoto(c core.Contributor) string {
	if c.Media == nil {
		return ""
	}
	for _, img := range c.Media.Images {
		if !slices.Contains(img.Classification, core.Classification{Realm: "type", ID: "profile"}) {
			continue
		}
		for _, u := range img.URIs {
			if u.Type == "remote" {
				return u.URI
			}
		}
	}
	return ""
}

func salesRights(rights map[string]bool) *SalesRights {
	var countries []string
	world := false
	for code, ok := range rights {
		switch {
		case !ok:
		case code == core.TerritoryWorld:
			world = true
		default:
			countries = append(countries, code)
		}
	}
	if !world && len(countries) == 0 {
		return nil
	}

	slices.Sort(countries)
	sr := &SalesRights{SalesRightsType: salesRightsExclusive, RightsCountry: strings.Join(countries, " ")}
	if world {
		sr.RightsTerritory = core.TerritoryWorld
	}
	return sr
}

func textFormat(content string) string {
	if strings.Contains(content, "<") {
		return textFormatXHTML
	}
	return textFormatDefault
}
