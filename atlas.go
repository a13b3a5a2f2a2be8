package crunch

import (
	"encoding/binary"
	"encoding/json"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Atlas describes a finished packing run, ready for serialization. The same
// description feeds the XML, JSON and binary writers so the three manifests
// always agree on every field.
type Atlas struct {
	Pages []Page
	// Trim controls whether the frame fields are part of the manifest,
	// Rotate whether the rotation flag is.
	Trim   bool
	Rotate bool
}

// Page is one atlas page of the manifest.
type Page struct {
	Name    string
	Sprites []Sprite
}

// Sprite is one packed source image of the manifest.
type Sprite struct {
	Name                           string
	X, Y, W, H                     int
	FrameX, FrameY, FrameW, FrameH int
	Rotated                        bool
}

// NewAtlas builds the manifest description of the packed pages. Page i is
// named pagePrefix followed by the page index.
func NewAtlas(pagePrefix string, packers []*Packer, trim, rotate bool) *Atlas {
	a := &Atlas{Trim: trim, Rotate: rotate}
	for i, p := range packers {
		page := Page{Name: pagePrefix + strconv.Itoa(i)}
		for _, pl := range p.Placements {
			page.Sprites = append(page.Sprites, Sprite{
				Name:    pl.Bitmap.Name,
				X:       pl.X,
				Y:       pl.Y,
				W:       pl.Bitmap.Width(),
				H:       pl.Bitmap.Height(),
				FrameX:  pl.Bitmap.FrameX,
				FrameY:  pl.Bitmap.FrameY,
				FrameW:  pl.Bitmap.FrameW,
				FrameH:  pl.Bitmap.FrameH,
				Rotated: pl.Rotated,
			})
		}
		a.Pages = append(a.Pages, page)
	}
	return a
}

type xmlAtlas struct {
	XMLName xml.Name  `xml:"atlas"`
	Pages   []xmlPage `xml:"tex"`
}

type xmlPage struct {
	Name    string      `xml:"n,attr"`
	Sprites []xmlSprite `xml:"img"`
}

type xmlSprite struct {
	Name    string `xml:"n,attr"`
	X       int    `xml:"x,attr"`
	Y       int    `xml:"y,attr"`
	W       int    `xml:"w,attr"`
	H       int    `xml:"h,attr"`
	FrameX  *int   `xml:"fx,attr"`
	FrameY  *int   `xml:"fy,attr"`
	FrameW  *int   `xml:"fw,attr"`
	FrameH  *int   `xml:"fh,attr"`
	Rotated int    `xml:"r,attr,omitempty"`
}

type jsonAtlas struct {
	Textures []jsonPage `json:"textures"`
}

type jsonPage struct {
	Name    string       `json:"name"`
	Sprites []jsonSprite `json:"images"`
}

type jsonSprite struct {
	Name    string `json:"n"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	FrameX  *int   `json:"fx,omitempty"`
	FrameY  *int   `json:"fy,omitempty"`
	FrameW  *int   `json:"fw,omitempty"`
	FrameH  *int   `json:"fh,omitempty"`
	Rotated int    `json:"r,omitempty"`
}

// frame returns pointers to the sprite's frame fields when trimming was
// enabled, so that zero-valued frame coordinates still serialize.
func (a *Atlas) frame(s *Sprite) (fx, fy, fw, fh *int) {
	if !a.Trim {
		return nil, nil, nil, nil
	}
	return &s.FrameX, &s.FrameY, &s.FrameW, &s.FrameH
}

func (a *Atlas) rotated(s *Sprite) int {
	if a.Rotate && s.Rotated {
		return 1
	}
	return 0
}

// WriteXml serializes the manifest in the XML format.
func (a *Atlas) WriteXml(w io.Writer) error {
	doc := xmlAtlas{}
	for i := range a.Pages {
		page := xmlPage{Name: a.Pages[i].Name}
		for j := range a.Pages[i].Sprites {
			s := &a.Pages[i].Sprites[j]
			fx, fy, fw, fh := a.frame(s)
			page.Sprites = append(page.Sprites, xmlSprite{
				Name: s.Name,
				X:    s.X, Y: s.Y, W: s.W, H: s.H,
				FrameX: fx, FrameY: fy, FrameW: fw, FrameH: fh,
				Rotated: a.rotated(s),
			})
		}
		doc.Pages = append(doc.Pages, page)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode the xml manifest")
	}
	return nil
}

// WriteJson serializes the manifest in the JSON format.
func (a *Atlas) WriteJson(w io.Writer) error {
	doc := jsonAtlas{Textures: []jsonPage{}}
	for i := range a.Pages {
		page := jsonPage{Name: a.Pages[i].Name, Sprites: []jsonSprite{}}
		for j := range a.Pages[i].Sprites {
			s := &a.Pages[i].Sprites[j]
			fx, fy, fw, fh := a.frame(s)
			page.Sprites = append(page.Sprites, jsonSprite{
				Name: s.Name,
				X:    s.X, Y: s.Y, W: s.W, H: s.H,
				FrameX: fx, FrameY: fy, FrameW: fw, FrameH: fh,
				Rotated: a.rotated(s),
			})
		}
		doc.Textures = append(doc.Textures, page)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode the json manifest")
	}
	return nil
}

// WriteBin serializes the manifest in the binary format. All integers are
// signed 16-bit little-endian, strings are null-terminated UTF-8. The frame
// block is present only when trimming was enabled, the rotation byte only
// when rotation was.
func (a *Atlas) WriteBin(w io.Writer) error {
	bw := &binWriter{w: w}

	bw.writeInt16(int16(len(a.Pages)))
	for i := range a.Pages {
		page := &a.Pages[i]
		bw.writeString(page.Name)
		bw.writeInt16(int16(len(page.Sprites)))
		for j := range page.Sprites {
			s := &page.Sprites[j]
			bw.writeString(s.Name)
			bw.writeInt16(int16(s.X))
			bw.writeInt16(int16(s.Y))
			bw.writeInt16(int16(s.W))
			bw.writeInt16(int16(s.H))
			if a.Trim {
				bw.writeInt16(int16(s.FrameX))
				bw.writeInt16(int16(s.FrameY))
				bw.writeInt16(int16(s.FrameW))
				bw.writeInt16(int16(s.FrameH))
			}
			if a.Rotate {
				bw.writeByte(byte(a.rotated(s)))
			}
		}
	}

	return errors.Wrap(bw.err, "failed to encode the binary manifest")
}

// binWriter accumulates the first write error so the serializer body stays
// free of per-field error checks.
type binWriter struct {
	w   io.Writer
	err error
}

func (b *binWriter) writeInt16(v int16) {
	if b.err != nil {
		return
	}
	b.err = binary.Write(b.w, binary.LittleEndian, v)
}

func (b *binWriter) writeByte(v byte) {
	if b.err != nil {
		return
	}
	_, b.err = b.w.Write([]byte{v})
}

func (b *binWriter) writeString(s string) {
	if b.err != nil {
		return
	}
	_, b.err = b.w.Write(append([]byte(s), 0))
}
