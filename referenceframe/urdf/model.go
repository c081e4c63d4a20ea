// Package urdf reads Unified Robot Description Format documents into joint and link specs.
package urdf

import "encoding/xml"

// Extension is the file extension associated with URDF files.
const Extension string = "urdf"

// robot is the root element of a URDF document. Only direct children are read, so joints
// nested in transmissions or gazebo blocks are ignored.
type robot struct {
	XMLName xml.Name `xml:"robot"`
	Name    string   `xml:"name,attr"`
	Links   []link   `xml:"link"`
	Joints  []joint  `xml:"joint"`
}

// link is a struct which details the XML used in a URDF link element.
type link struct {
	Name    string   `xml:"name,attr"`
	Visuals []visual `xml:"visual"`
}

// joint is a struct which details the XML used in a URDF joint element.
type joint struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Parent *frame `xml:"parent"`
	Child  *frame `xml:"child"`
	Origin *pose  `xml:"origin"`
	Axis   *axis  `xml:"axis"`
}

type frame struct {
	Link string `xml:"link,attr"`
}

// pose holds an origin element. Attributes are pointers so absent values can be told
// apart from malformed ones.
type pose struct {
	XYZ *string `xml:"xyz,attr"` // "x y z" format, in meters
	RPY *string `xml:"rpy,attr"` // "r p y" format, in radians
}

type axis struct {
	XYZ *string `xml:"xyz,attr"`
}

type visual struct {
	Origin   *pose     `xml:"origin"`
	Geometry *geometry `xml:"geometry"`
}

type geometry struct {
	Box      *box      `xml:"box"`
	Cylinder *cylinder `xml:"cylinder"`
	Sphere   *sphere   `xml:"sphere"`
	Mesh     *mesh     `xml:"mesh"`
}

type box struct {
	Size *string `xml:"size,attr"`
}

type cylinder struct {
	Radius *string `xml:"radius,attr"`
	Length *string `xml:"length,attr"`
}

type sphere struct {
	Radius *string `xml:"radius,attr"`
}

type mesh struct {
	Filename string  `xml:"filename,attr"`
	Scale    *string `xml:"scale,attr"`
}
