package edc

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"
)

func TestLoadScenario(t *testing.T) {
	pic, err := LoadFile("../testdata/scenario.PIC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pic.Name != "SCENARIO" {
		t.Errorf("expected device name SCENARIO, got %q", pic.Name)
	}

	sector := pic.Sector
	if sector.BeginAddr.Value != 0 || sector.EndAddr.Value != 8 {
		t.Errorf("unexpected sector bounds %s..%s", sector.BeginAddr, sector.EndAddr)
	}

	if len(sector.Registers) != 2 {
		t.Fatalf("expected 2 registers, got %d", len(sector.Registers))
	}

	reg := sector.Registers[0]
	if reg.Name != "DEVCFG0" || reg.Default.Literal != "0xffffffff" {
		t.Errorf("unexpected register %s default %s", reg.Name, reg.Default)
	}

	mode := reg.Mode(DefaultMode)
	if mode == nil {
		t.Fatal("DS.0 mode not found")
	}

	if len(mode.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(mode.Nodes))
	}

	names := []string{"FOO", "HIDDEN", "BAR"}
	for i, node := range mode.Nodes {
		field, ok := node.(*DCRFieldDef)
		if !ok {
			t.Fatalf("node %d: expected *DCRFieldDef, got %T", i, node)
		}
		if field.Name != names[i] {
			t.Errorf("node %d: expected %s, got %s", i, names[i], field.Name)
		}
	}

	hidden := mode.Nodes[1].(*DCRFieldDef)
	if !hidden.Hidden {
		t.Error("expected HIDDEN to be hidden")
	}

	bar := mode.Nodes[2].(*DCRFieldDef)
	if len(bar.Semantics) != 2 || bar.Semantics[1].When != "($0 & 0x3) == 0x3" {
		t.Errorf("unexpected semantics %+v", bar.Semantics)
	}

	adjust, ok := sector.Registers[1].Mode(DefaultMode).Nodes[0].(*AdjustPoint)
	if !ok {
		t.Fatalf("expected *AdjustPoint, got %T", sector.Registers[1].Mode(DefaultMode).Nodes[0])
	}
	if adjust.Offset.Value != 16 {
		t.Errorf("expected adjust offset 16, got %d", adjust.Offset.Value)
	}
}

func TestLoadKeepsModes(t *testing.T) {
	pic, err := LoadFile("../testdata/pic32mx274f256b.PIC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg := pic.Sector.Registers[1]
	if reg.Name != "DEVCFG2" {
		t.Fatalf("expected DEVCFG2, got %s", reg.Name)
	}
	if len(reg.Modes) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(reg.Modes))
	}
	if reg.Mode("DS.1") == nil {
		t.Error("DS.1 mode not found")
	}
	if reg.Mode("DS.7") != nil {
		t.Error("unexpected DS.7 mode")
	}
}

func TestLoadCharset(t *testing.T) {
	pic, err := LoadFile("../testdata/pic32mz2048efh064.PIC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes := pic.Sector.Registers[0].Mode(DefaultMode).Nodes
	soscgain := nodes[len(nodes)-1].(*DCRFieldDef)
	if !strings.Contains(soscgain.Desc, "½") {
		t.Errorf("expected latin-1 description to be decoded, got %q", soscgain.Desc)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected error
	}{
		{
			"notEDC",
			`<root/>`,
			ErrNotEDC,
		},
		{
			"noSector",
			`<edc:PIC xmlns:edc="http://crownking/edc" edc:name="X"><edc:ProgramSpace/></edc:PIC>`,
			ErrNoConfigFuseSector,
		},
		{
			"wrongNamespace",
			`<edc:PIC xmlns:edc="http://crownking/edc" xmlns:o="urn:other"><o:ConfigFuseSector/></edc:PIC>`,
			ErrNoConfigFuseSector,
		},
		{
			"missingBounds",
			`<edc:PIC xmlns:edc="http://crownking/edc"><edc:ConfigFuseSector/></edc:PIC>`,
			ErrMissingAttribute,
		},
		{
			"missingWidth",
			`<edc:PIC xmlns:edc="http://crownking/edc">
			<edc:ConfigFuseSector edc:beginaddr="0x0" edc:endaddr="0x4">
			<edc:DCRDef edc:cname="DEVCFG0" edc:_addr="0x0" edc:default="0xffffffff">
			<edc:DCRModeList><edc:DCRMode edc:id="DS.0"><edc:DCRFieldDef edc:cname="FOO"/></edc:DCRMode></edc:DCRModeList>
			</edc:DCRDef></edc:ConfigFuseSector></edc:PIC>`,
			ErrMissingAttribute,
		},
		{
			"missingWhen",
			`<edc:PIC xmlns:edc="http://crownking/edc">
			<edc:ConfigFuseSector edc:beginaddr="0x0" edc:endaddr="0x4">
			<edc:DCRDef edc:cname="DEVCFG0" edc:_addr="0x0" edc:default="0xffffffff">
			<edc:DCRModeList><edc:DCRMode edc:id="DS.0"><edc:DCRFieldDef edc:cname="FOO" edc:nzwidth="1">
			<edc:DCRFieldSemantic edc:cname="ON"/>
			</edc:DCRFieldDef></edc:DCRMode></edc:DCRModeList>
			</edc:DCRDef></edc:ConfigFuseSector></edc:PIC>`,
			ErrMissingAttribute,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.src))
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestLoadUnsupportedCharset(t *testing.T) {
	_, err := Load(strings.NewReader(`<?xml version="1.0" encoding="x-no-such-charset"?><edc:PIC xmlns:edc="http://crownking/edc"/>`))
	if err == nil || !strings.Contains(err.Error(), ErrUnsupportedCharset.Error()) {
		t.Errorf("expected unsupported charset error, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(strings.NewReader(`<edc:PIC xmlns:edc="http://crownking/edc"><edc:ConfigFuseSector`))
	if err == nil {
		t.Fatal("expected an error")
	}

	var syntaxErr *xml.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("expected *xml.SyntaxError, got %T: %v", err, err)
	}
}

func TestLoadBadHiddenFlag(t *testing.T) {
	src := `<edc:PIC xmlns:edc="http://crownking/edc">
	<edc:ConfigFuseSector edc:beginaddr="0x0" edc:endaddr="0x4">
	<edc:DCRDef edc:cname="DEVCFG0" edc:_addr="0x0" edc:default="0xffffffff">
	<edc:DCRModeList><edc:DCRMode edc:id="DS.0">
	<edc:DCRFieldDef edc:cname="FOO" edc:nzwidth="1" edc:ishidden="maybe"/>
	</edc:DCRMode></edc:DCRModeList>
	</edc:DCRDef></edc:ConfigFuseSector></edc:PIC>`

	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Error("expected an error for ishidden=\"maybe\"")
	}
}

func TestUnknownNodeIsKept(t *testing.T) {
	src := `<edc:PIC xmlns:edc="http://crownking/edc">
	<edc:ConfigFuseSector edc:beginaddr="0x0" edc:endaddr="0x4">
	<edc:DCRDef edc:cname="DEVCFG0" edc:_addr="0x0" edc:default="0xffffffff">
	<edc:DCRModeList><edc:DCRMode edc:id="DS.0">
	<edc:DCRFieldDef edc:cname="FOO" edc:nzwidth="1"/>
	<edc:Mystery edc:width="3"><edc:Inner/></edc:Mystery>
	<edc:DCRFieldDef edc:cname="BAR" edc:nzwidth="1"/>
	</edc:DCRMode></edc:DCRModeList>
	</edc:DCRDef></edc:ConfigFuseSector></edc:PIC>`

	pic, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes := pic.Sector.Registers[0].Mode(DefaultMode).Nodes
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}

	unknown, ok := nodes[1].(*UnknownNode)
	if !ok {
		t.Fatalf("expected *UnknownNode, got %T", nodes[1])
	}
	if unknown.Tag().Local != "Mystery" || unknown.Tag().Space != Namespace {
		t.Errorf("unexpected tag %v", unknown.Tag())
	}
	if nodes[2].(*DCRFieldDef).Name != "BAR" {
		t.Error("expected BAR after the unknown node")
	}
}
