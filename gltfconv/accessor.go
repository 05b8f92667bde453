// Package gltfconv converts between scene data and GLTF 2.0 documents.
package gltfconv

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
)

func componentSize(t gltf.ComponentType) uint32 {
	switch t {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	default:
		return 4
	}
}

func componentsPerElement(t gltf.AccessorType) uint32 {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	case gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// accessorData resolves an accessor to its backing bytes and stride and
// validates that the buffer actually holds accessor.Count elements.
func accessorData(doc *gltf.Document, accessor *gltf.Accessor) ([]byte, uint32, error) {
	if accessor.BufferView == nil {
		return nil, 0, nil
	}
	if int(*accessor.BufferView) >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("gltfconv: accessor references bufferView %d of %d", *accessor.BufferView, len(doc.BufferViews))
	}
	bv := doc.BufferViews[*accessor.BufferView]
	if int(bv.Buffer) >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("gltfconv: bufferView references buffer %d of %d", bv.Buffer, len(doc.Buffers))
	}
	buf := doc.Buffers[bv.Buffer]

	elemSize := componentSize(accessor.ComponentType) * componentsPerElement(accessor.Type)
	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := uint64(bv.ByteOffset) + uint64(accessor.ByteOffset)
	var required uint64
	if accessor.Count > 0 {
		required = uint64(accessor.Count-1)*uint64(stride) + uint64(elemSize)
	}
	if start+required > uint64(len(buf.Data)) {
		return nil, 0, fmt.Errorf("gltfconv: accessor needs %d bytes at offset %d but buffer %d holds %d",
			required, start, bv.Buffer, len(buf.Data))
	}
	return buf.Data[start:], stride, nil
}

// ReadAccessor decodes accessor index into a flat []float32 of length
// count*components. Integer component types are converted to float32;
// normalized accessors are scaled to [0,1] or [-1,1]. An absent index
// (nil) returns (nil, nil) so optional attributes read as "not present".
func ReadAccessor(doc *gltf.Document, index *uint32) ([]float32, error) {
	if index == nil {
		return nil, nil
	}
	if int(*index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("gltfconv: accessor index %d of %d", *index, len(doc.Accessors))
	}
	accessor := doc.Accessors[*index]
	comps := componentsPerElement(accessor.Type)
	out := make([]float32, accessor.Count*comps)
	data, stride, err := accessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return out, nil // sparse-less accessor without view reads as zeros
	}
	csize := componentSize(accessor.ComponentType)
	for i := uint32(0); i < accessor.Count; i++ {
		elem := data[i*stride:]
		for c := uint32(0); c < comps; c++ {
			out[i*comps+c] = componentFloat(accessor.ComponentType, accessor.Normalized, elem[c*csize:])
		}
	}
	return out, nil
}

func componentFloat(t gltf.ComponentType, normalized bool, b []byte) float32 {
	switch t {
	case gltf.ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltf.ComponentByte:
		v := float32(int8(b[0]))
		if normalized {
			v /= 127
			if v < -1 {
				v = -1
			}
		}
		return v
	case gltf.ComponentUbyte:
		v := float32(b[0])
		if normalized {
			v /= 255
		}
		return v
	case gltf.ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			v /= 32767
			if v < -1 {
				v = -1
			}
		}
		return v
	case gltf.ComponentUshort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			v /= 65535
		}
		return v
	case gltf.ComponentUint:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// ReadAccessorUint decodes an unsigned-integer accessor (indices, joint
// ids) without a float round trip.
func ReadAccessorUint(doc *gltf.Document, index *uint32) ([]uint32, error) {
	if index == nil {
		return nil, nil
	}
	if int(*index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("gltfconv: accessor index %d of %d", *index, len(doc.Accessors))
	}
	accessor := doc.Accessors[*index]
	comps := componentsPerElement(accessor.Type)
	out := make([]uint32, accessor.Count*comps)
	data, stride, err := accessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return out, nil
	}
	csize := componentSize(accessor.ComponentType)
	for i := uint32(0); i < accessor.Count; i++ {
		elem := data[i*stride:]
		for c := uint32(0); c < comps; c++ {
			b := elem[c*csize:]
			switch accessor.ComponentType {
			case gltf.ComponentUbyte:
				out[i*comps+c] = uint32(b[0])
			case gltf.ComponentByte:
				out[i*comps+c] = uint32(int8(b[0]))
			case gltf.ComponentUshort:
				out[i*comps+c] = uint32(binary.LittleEndian.Uint16(b))
			case gltf.ComponentShort:
				out[i*comps+c] = uint32(int16(binary.LittleEndian.Uint16(b)))
			case gltf.ComponentUint:
				out[i*comps+c] = binary.LittleEndian.Uint32(b)
			case gltf.ComponentFloat:
				out[i*comps+c] = uint32(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			}
		}
	}
	return out, nil
}

func ensureBuffer(doc *gltf.Document) *gltf.Buffer {
	if len(doc.Buffers) == 0 {
		doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	}
	return doc.Buffers[0]
}

// appendBufferView appends data to buffer 0 at 4-byte alignment and
// returns the new bufferView index.
func appendBufferView(doc *gltf.Document, data []byte, stride uint32, target gltf.Target) uint32 {
	buf := ensureBuffer(doc)
	for len(buf.Data)%4 != 0 {
		buf.Data = append(buf.Data, 0)
	}
	offset := uint32(len(buf.Data))
	buf.Data = append(buf.Data, data...)
	buf.ByteLength = uint32(len(buf.Data))
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: uint32(len(data)),
		ByteStride: stride,
		Target:     target,
	})
	return uint32(len(doc.BufferViews) - 1)
}

// WriteAccessor encodes a flat []float32 as a float accessor of the
// given element type and returns its index. VEC3 accessors carry
// Min/Max, which GLTF requires for POSITION.
func WriteAccessor(doc *gltf.Document, data []float32, accType gltf.AccessorType, target gltf.Target) uint32 {
	comps := componentsPerElement(accType)
	blob := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	bv := appendBufferView(doc, blob, 0, target)
	accessor := &gltf.Accessor{
		BufferView:    gltf.Index(bv),
		ComponentType: gltf.ComponentFloat,
		Count:         uint32(len(data)) / comps,
		Type:          accType,
	}
	if accType == gltf.AccessorVec3 && len(data) > 0 {
		accessor.Min, accessor.Max = vec3Bounds(data)
	}
	doc.Accessors = append(doc.Accessors, accessor)
	return uint32(len(doc.Accessors) - 1)
}

func vec3Bounds(data []float32) (min, max []float32) {
	min = []float32{data[0], data[1], data[2]}
	max = []float32{data[0], data[1], data[2]}
	for i := 3; i+2 < len(data); i += 3 {
		for c := 0; c < 3; c++ {
			if v := data[i+c]; v < min[c] {
				min[c] = v
			} else if v > max[c] {
				max[c] = v
			}
		}
	}
	return min, max
}

// WriteIndices encodes triangle indices, picking uint16 storage when the
// vertex count fits and uint32 otherwise.
func WriteIndices(doc *gltf.Document, indices []uint32, vertexCount int) uint32 {
	var blob []byte
	ctype := gltf.ComponentUint
	if vertexCount <= 65535 {
		ctype = gltf.ComponentUshort
		blob = make([]byte, 2*len(indices))
		for i, v := range indices {
			binary.LittleEndian.PutUint16(blob[i*2:], uint16(v))
		}
	} else {
		blob = make([]byte, 4*len(indices))
		for i, v := range indices {
			binary.LittleEndian.PutUint32(blob[i*4:], v)
		}
	}
	bv := appendBufferView(doc, blob, 0, gltf.TargetElementArrayBuffer)
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(bv),
		ComponentType: ctype,
		Count:         uint32(len(indices)),
		Type:          gltf.AccessorScalar,
	})
	return uint32(len(doc.Accessors) - 1)
}

// interleavedAccessor registers an accessor into an existing strided
// bufferView at the given byte offset.
func interleavedAccessor(doc *gltf.Document, bufferView, byteOffset uint32, ctype gltf.ComponentType, count uint32, accType gltf.AccessorType, normalized bool) uint32 {
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(bufferView),
		ByteOffset:    byteOffset,
		ComponentType: ctype,
		Normalized:    normalized,
		Count:         count,
		Type:          accType,
	})
	return uint32(len(doc.Accessors) - 1)
}
