package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/lumen-go/common"
)

// objBackend decodes Wavefront OBJ geometry together with the MTL material
// libraries it names. Faces are fan-triangulated, corner triplets are
// de-duplicated per mesh partition, and texture V coordinates are flipped from
// OBJ's bottom-left origin to the top-left origin the GPU samples with.
type objBackend struct{}

// newOBJLoaderBackend creates the OBJ format backend.
func newOBJLoaderBackend() loaderBackend {
	return &objBackend{}
}

func (o *objBackend) Load(path string) (common.ImportedObject, error) {
	file, err := os.Open(path)
	if err != nil {
		return common.ImportedObject{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return o.decode(file, filepath.Dir(path))
}

// objTriplet is one face corner's resolved global attribute indices, -1 for an
// absent texture coordinate or normal.
type objTriplet struct {
	position, texCoord, normal int
}

// objPartition accumulates the de-duplicated vertex data of one mesh: faces
// that share an object/group name and material land in the same partition.
type objPartition struct {
	name      string
	material  string
	positions []float32
	texCoords []float32
	normals   []float32
	indices   []uint32
	lookup    map[objTriplet]uint32
}

// objMaterial is one MTL material definition. Only the diffuse map is consumed.
type objMaterial struct {
	name  string
	mapKd string
}

// objDecoder holds the running parse state for one OBJ document.
type objDecoder struct {
	dir string

	positions [][3]float32
	texCoords [][2]float32
	normals   [][3]float32

	materials map[string]*objMaterial

	partitions      []*objPartition
	current         *objPartition
	currentName     string
	currentMaterial string
}

func (o *objBackend) decode(r io.Reader, dir string) (common.ImportedObject, error) {
	d := &objDecoder{
		dir:       dir,
		materials: make(map[string]*objMaterial),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			err = d.parsePosition(fields[1:])
		case "vt":
			err = d.parseTexCoord(fields[1:])
		case "vn":
			err = d.parseNormal(fields[1:])
		case "f":
			err = d.parseFace(fields[1:])
		case "o", "g":
			d.currentName = strings.Join(fields[1:], " ")
			d.current = nil
		case "usemtl":
			if len(fields) < 2 {
				err = fmt.Errorf("usemtl missing material name")
				break
			}
			d.currentMaterial = fields[1]
			d.current = nil
		case "mtllib":
			if len(fields) < 2 {
				err = fmt.Errorf("mtllib missing file name")
				break
			}
			for _, name := range fields[1:] {
				if err = d.parseMTLFile(filepath.Join(dir, name)); err != nil {
					break
				}
			}
		}
		if err != nil {
			return common.ImportedObject{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return common.ImportedObject{}, fmt.Errorf("failed to read obj data: %w", err)
	}

	return d.finalize()
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("have %d values, want %d", len(fields), want)
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", fields[i], err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func (d *objDecoder) parsePosition(fields []string) error {
	v, err := parseFloats(fields, 3)
	if err != nil {
		return fmt.Errorf("position: %w", err)
	}
	d.positions = append(d.positions, [3]float32{v[0], v[1], v[2]})
	return nil
}

func (d *objDecoder) parseTexCoord(fields []string) error {
	v, err := parseFloats(fields, 2)
	if err != nil {
		return fmt.Errorf("texture coordinate: %w", err)
	}
	d.texCoords = append(d.texCoords, [2]float32{v[0], v[1]})
	return nil
}

func (d *objDecoder) parseNormal(fields []string) error {
	v, err := parseFloats(fields, 3)
	if err != nil {
		return fmt.Errorf("normal: %w", err)
	}
	d.normals = append(d.normals, [3]float32{v[0], v[1], v[2]})
	return nil
}

// resolveIndex converts a 1-based OBJ index (negative values count back from
// the end of the list) into a 0-based index.
func resolveIndex(raw string, count int) (int, error) {
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", raw, err)
	}
	if idx == 0 {
		return 0, fmt.Errorf("index 0 is not valid, obj indices are 1-based")
	}
	if idx > 0 {
		idx--
	} else {
		idx += count
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %s out of range (have %d entries)", raw, count)
	}
	return idx, nil
}

// parseTriplet resolves one face corner of the form v, v/vt, v//vn or v/vt/vn.
func (d *objDecoder) parseTriplet(token string) (objTriplet, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return objTriplet{}, fmt.Errorf("malformed face corner %q", token)
	}

	t := objTriplet{texCoord: -1, normal: -1}

	pos, err := resolveIndex(parts[0], len(d.positions))
	if err != nil {
		return objTriplet{}, fmt.Errorf("face corner %q: %w", token, err)
	}
	t.position = pos

	if len(parts) > 1 && parts[1] != "" {
		uv, err := resolveIndex(parts[1], len(d.texCoords))
		if err != nil {
			return objTriplet{}, fmt.Errorf("face corner %q: %w", token, err)
		}
		t.texCoord = uv
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err := resolveIndex(parts[2], len(d.normals))
		if err != nil {
			return objTriplet{}, fmt.Errorf("face corner %q: %w", token, err)
		}
		t.normal = n
	}
	return t, nil
}

func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face has %d corners, want at least 3", len(fields))
	}

	corners := make([]objTriplet, len(fields))
	for i, token := range fields {
		t, err := d.parseTriplet(token)
		if err != nil {
			return err
		}
		corners[i] = t
	}

	p := d.partition()
	for i := 1; i+1 < len(corners); i++ {
		p.indices = append(p.indices, d.corner(p, corners[0]), d.corner(p, corners[i]), d.corner(p, corners[i+1]))
	}
	return nil
}

// partition returns the mesh partition faces are currently accumulating into,
// starting a new one after an o/g/usemtl directive changed the context.
func (d *objDecoder) partition() *objPartition {
	if d.current == nil {
		d.current = &objPartition{
			name:     d.currentName,
			material: d.currentMaterial,
			lookup:   make(map[objTriplet]uint32),
		}
		d.partitions = append(d.partitions, d.current)
	}
	return d.current
}

// corner returns the partition-local vertex index for a triplet, emitting the
// interleaved attributes on first use. Absent texture coordinates and normals
// are zero-filled; the V coordinate is flipped to the top-left origin.
func (d *objDecoder) corner(p *objPartition, t objTriplet) uint32 {
	if idx, ok := p.lookup[t]; ok {
		return idx
	}

	pos := d.positions[t.position]
	p.positions = append(p.positions, pos[0], pos[1], pos[2])

	if t.texCoord >= 0 {
		uv := d.texCoords[t.texCoord]
		p.texCoords = append(p.texCoords, uv[0], 1.0-uv[1])
	} else {
		p.texCoords = append(p.texCoords, 0, 0)
	}

	if t.normal >= 0 {
		n := d.normals[t.normal]
		p.normals = append(p.normals, n[0], n[1], n[2])
	} else {
		p.normals = append(p.normals, 0, 0, 0)
	}

	idx := uint32(len(p.lookup))
	p.lookup[t] = idx
	return idx
}

func (d *objDecoder) parseMTLFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open material library: %w", err)
	}
	defer file.Close()
	return d.parseMTL(file, filepath.Dir(path))
}

// parseMTL reads one MTL library. Every directive except newmtl and map_Kd is
// ignored; the engine's material model is a single diffuse texture.
func (d *objDecoder) parseMTL(r io.Reader, dir string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *objMaterial
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return fmt.Errorf("mtl line %d: newmtl missing material name", lineNo)
			}
			current = &objMaterial{name: fields[1]}
			d.materials[current.name] = current
		case "map_Kd":
			if current == nil {
				return fmt.Errorf("mtl line %d: map_Kd before any newmtl", lineNo)
			}
			name := strings.TrimSpace(strings.TrimPrefix(line, "map_Kd"))
			if name == "" {
				return fmt.Errorf("mtl line %d: map_Kd missing file name", lineNo)
			}
			current.mapKd = filepath.Join(dir, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read material library: %w", err)
	}
	return nil
}

// finalize resolves each partition's material name against the parsed MTL
// definitions and applies the shared all-or-nothing texture rule.
func (d *objDecoder) finalize() (common.ImportedObject, error) {
	if len(d.partitions) == 0 {
		return common.ImportedObject{}, fmt.Errorf("obj document contains no faces")
	}

	var refs []resolvedMaterial
	refIndex := make(map[string]int)

	meshes := make([]common.ImportedMesh, len(d.partitions))
	for i, p := range d.partitions {
		materialID := -1
		if p.material != "" {
			idx, ok := refIndex[p.material]
			if !ok {
				mat, defined := d.materials[p.material]
				if !defined {
					return common.ImportedObject{}, fmt.Errorf("usemtl %q: material not defined in any mtllib", p.material)
				}
				ref := resolvedMaterial{name: mat.name}
				if mat.mapKd != "" {
					ref.texture = &common.ImportedTexture{Name: mat.name, Path: mat.mapKd}
				}
				idx = len(refs)
				refs = append(refs, ref)
				refIndex[p.material] = idx
			}
			materialID = idx
		}

		meshes[i] = common.ImportedMesh{
			Name:       p.name,
			Positions:  p.positions,
			TexCoords:  p.texCoords,
			Normals:    p.normals,
			Indices:    p.indices,
			MaterialID: materialID,
		}
	}

	return resolveMaterialTextures(meshes, refs)
}
