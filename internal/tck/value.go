package tck

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Value is a typed TCK value element. V holds nil, bool, float64, string,
// []any or map[string]any.
type Value struct {
	V any
}

type itemXML struct {
	Value *Value `xml:"value"`
}

type componentXML struct {
	Name  string `xml:"name,attr"`
	Value *Value `xml:"value"`
}

func typeAttr(t string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "xsi:type"}, Value: t}
}

// MarshalXML writes v with an xsi:type attribute, or xsi:nil for nil.
func (v Value) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	switch tv := v.V.(type) {
	case nil:
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xsi:nil"}, Value: "true"})
		return encodeEmpty(e, start)
	case bool:
		start.Attr = append(start.Attr, typeAttr("xsd:boolean"))
		return e.EncodeElement(strconv.FormatBool(tv), start)
	case string:
		start.Attr = append(start.Attr, typeAttr("xsd:string"))
		return e.EncodeElement(tv, start)
	case json.Number, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		start.Attr = append(start.Attr, typeAttr("xsd:decimal"))
		return e.EncodeElement(strconv.FormatFloat(cast.ToFloat64(tv), 'f', -1, 64), start)
	case []any:
		start.Attr = append(start.Attr, typeAttr("tck:list"))
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		for _, item := range tv {
			if err := e.EncodeElement(itemXML{Value: &Value{V: item}}, xml.StartElement{Name: xml.Name{Local: "item"}}); err != nil {
				return err
			}
		}
		return e.EncodeToken(start.End())
	case map[string]any:
		start.Attr = append(start.Attr, typeAttr("tck:context"))
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c := componentXML{Name: k, Value: &Value{V: tv[k]}}
			if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "component"}}); err != nil {
				return err
			}
		}
		return e.EncodeToken(start.End())
	default:
		start.Attr = append(start.Attr, typeAttr("xsd:string"))
		return e.EncodeElement(fmt.Sprint(tv), start)
	}
}

func encodeEmpty(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads a value element. Without xsi:type the text is taken as
// a boolean, then a number, then a string.
func (v *Value) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var typeName string
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "nil":
			if strings.TrimSpace(a.Value) == "true" {
				v.V = nil
				return d.Skip()
			}
		case "type":
			typeName = a.Value
			if i := strings.LastIndex(typeName, ":"); i >= 0 {
				typeName = typeName[i+1:]
			}
		}
	}

	switch typeName {
	case "list":
		return v.decodeList(d)
	case "context":
		return v.decodeContext(d)
	}

	var text string
	if err := d.DecodeElement(&text, &start); err != nil {
		return err
	}

	switch typeName {
	case "boolean":
		v.V = strings.EqualFold(strings.TrimSpace(text), "true")
	case "decimal", "integer", "double", "float", "long", "int":
		t := strings.TrimSpace(text)
		if t == "" {
			v.V = 0.0
			return nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value %q", typeName, t)
		}
		v.V = f
	case "string":
		v.V = text
	default:
		v.V = inferValue(text)
	}
	return nil
}

func (v *Value) decodeList(d *xml.Decoder) error {
	items := []any{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "item" {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			var it itemXML
			if err := d.DecodeElement(&it, &t); err != nil {
				return err
			}
			if it.Value != nil {
				items = append(items, it.Value.V)
			}
		case xml.EndElement:
			v.V = items
			return nil
		}
	}
}

func (v *Value) decodeContext(d *xml.Decoder) error {
	ctx := map[string]any{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "component" {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			var c componentXML
			if err := d.DecodeElement(&c, &t); err != nil {
				return err
			}
			if c.Name != "" && c.Value != nil {
				ctx[c.Name] = c.Value.V
			}
		case xml.EndElement:
			v.V = ctx
			return nil
		}
	}
}

func inferValue(text string) any {
	t := strings.TrimSpace(text)
	switch t {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f
	}
	return t
}
