package metadata

import "fmt"

// ResourceKind tags a pooled resource descriptor. Descriptors are a tagged
// variant, never an untagged union: the kind is checked before access.
type ResourceKind uint8

const (
	ResourceKindTexture ResourceKind = iota
	ResourceKindBuffer
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindTexture:
		return "texture"
	case ResourceKindBuffer:
		return "buffer"
	}
	return "unknown"
}

type TextureFormat uint8

const (
	TextureFormatUnknown TextureFormat = iota
	TextureFormatRGBA8
	TextureFormatSRGBA8
	TextureFormatRGBA16F
	TextureFormatRGBA32F
	TextureFormatDepth24Stencil8
	TextureFormatDepth32F
)

// TextureDescriptor describes a pooled texture, including temporary render
// targets requested by stages (e.g. downsample chains).
type TextureDescriptor struct {
	Name         string
	Width        uint32
	Height       uint32
	MipLevels    uint32
	Format       TextureFormat
	RenderTarget bool
	Sampled      bool
}

// NewTextureDescriptor returns a single-mip sampled RGBA8 descriptor.
func NewTextureDescriptor(name string, width, height uint32) *TextureDescriptor {
	return &TextureDescriptor{
		Name:      name,
		Width:     width,
		Height:    height,
		MipLevels: 1,
		Format:    TextureFormatRGBA8,
		Sampled:   true,
	}
}

type BufferUsage uint8

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageTransferSrc
	BufferUsageTransferDst
)

type BufferDescriptor struct {
	Name  string
	Size  uint64
	Usage BufferUsage
}

// ResourceDescriptor is the tagged variant stored per registry slot. Exactly
// one of Texture/Buffer is set, selected by Kind.
type ResourceDescriptor struct {
	Kind    ResourceKind
	Texture *TextureDescriptor
	Buffer  *BufferDescriptor
}

func TextureResource(desc *TextureDescriptor) ResourceDescriptor {
	return ResourceDescriptor{Kind: ResourceKindTexture, Texture: desc}
}

func BufferResource(desc *BufferDescriptor) ResourceDescriptor {
	return ResourceDescriptor{Kind: ResourceKindBuffer, Buffer: desc}
}

// Validate checks the kind tag against the populated descriptor arm.
func (rd ResourceDescriptor) Validate() error {
	switch rd.Kind {
	case ResourceKindTexture:
		if rd.Texture == nil {
			return fmt.Errorf("resource descriptor tagged texture carries no texture descriptor")
		}
	case ResourceKindBuffer:
		if rd.Buffer == nil {
			return fmt.Errorf("resource descriptor tagged buffer carries no buffer descriptor")
		}
	default:
		return fmt.Errorf("resource descriptor has unknown kind %d", rd.Kind)
	}
	return nil
}
