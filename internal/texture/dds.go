package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math/bits"
)

// ErrUnsupportedFormat is returned for DDS pixel formats the decoder does
// not handle (BC4-BC7, floating point, palettized).
var ErrUnsupportedFormat = errors.New("texture: unsupported DDS format")

const (
	ddsMagic      = "DDS "
	ddsHeaderSize = 124
	ddsDataOffset = 4 + ddsHeaderSize
	dx10Size      = 20

	pfAlphaPixels = 0x1
	pfFourCC      = 0x4
	pfRGB         = 0x40
)

// DXGI formats accepted behind a DX10 header.
const (
	dxgiR8G8B8A8     = 28
	dxgiR8G8B8A8SRGB = 29
	dxgiBC1          = 71
	dxgiBC1SRGB      = 72
	dxgiBC2          = 74
	dxgiBC2SRGB      = 75
	dxgiBC3          = 77
	dxgiBC3SRGB      = 78
	dxgiB8G8R8A8     = 87
	dxgiB8G8R8A8SRGB = 91
)

type ddsFormat int

const (
	fmtBC1 ddsFormat = iota + 1
	fmtBC2
	fmtBC3
	fmtRGBA // masked 24/32-bit
)

// pixelMasks describes an uncompressed layout.
type pixelMasks struct {
	bitCount   int
	r, g, b, a uint32
}

var (
	masksRGBA = pixelMasks{32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000}
	masksBGRA = pixelMasks{32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000}
)

// DecodeDDS decodes the top mip level of a DDS file.
func DecodeDDS(data []byte) (*image.NRGBA, error) {
	if len(data) < ddsDataOffset || string(data[:4]) != ddsMagic {
		return nil, errors.New("texture: not a DDS file")
	}
	le := binary.LittleEndian
	h := data[4:ddsDataOffset]
	if le.Uint32(h[0:]) != ddsHeaderSize {
		return nil, fmt.Errorf("texture: bad DDS header size %d", le.Uint32(h[0:]))
	}
	height := int(le.Uint32(h[8:]))
	width := int(le.Uint32(h[12:]))
	if width <= 0 || height <= 0 || width > 1<<15 || height > 1<<15 {
		return nil, fmt.Errorf("texture: bad DDS dimensions %dx%d", width, height)
	}

	pf := h[72:104]
	pfFlags := le.Uint32(pf[4:])
	fourCC := string(pf[8:12])
	body := data[ddsDataOffset:]

	var format ddsFormat
	var masks pixelMasks
	switch {
	case pfFlags&pfFourCC != 0 && fourCC == "DX10":
		if len(body) < dx10Size {
			return nil, errors.New("texture: truncated DX10 header")
		}
		dxgi := le.Uint32(body[0:])
		body = body[dx10Size:]
		switch dxgi {
		case dxgiBC1, dxgiBC1SRGB:
			format = fmtBC1
		case dxgiBC2, dxgiBC2SRGB:
			format = fmtBC2
		case dxgiBC3, dxgiBC3SRGB:
			format = fmtBC3
		case dxgiR8G8B8A8, dxgiR8G8B8A8SRGB:
			format, masks = fmtRGBA, masksRGBA
		case dxgiB8G8R8A8, dxgiB8G8R8A8SRGB:
			format, masks = fmtRGBA, masksBGRA
		default:
			return nil, fmt.Errorf("%w: DXGI format %d", ErrUnsupportedFormat, dxgi)
		}
	case pfFlags&pfFourCC != 0:
		switch fourCC {
		case "DXT1":
			format = fmtBC1
		case "DXT2", "DXT3":
			format = fmtBC2
		case "DXT4", "DXT5":
			format = fmtBC3
		default:
			return nil, fmt.Errorf("%w: fourCC %q", ErrUnsupportedFormat, fourCC)
		}
	case pfFlags&pfRGB != 0:
		masks = pixelMasks{
			bitCount: int(le.Uint32(pf[12:])),
			r:        le.Uint32(pf[16:]),
			g:        le.Uint32(pf[20:]),
			b:        le.Uint32(pf[24:]),
		}
		if pfFlags&pfAlphaPixels != 0 {
			masks.a = le.Uint32(pf[28:])
		}
		if masks.bitCount != 24 && masks.bitCount != 32 {
			return nil, fmt.Errorf("%w: %d-bit RGB", ErrUnsupportedFormat, masks.bitCount)
		}
		format = fmtRGBA
	default:
		return nil, fmt.Errorf("%w: pixel format flags %#x", ErrUnsupportedFormat, pfFlags)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	var err error
	switch format {
	case fmtBC1:
		err = decodeBlocks(img, body, 8, decodeBC1Block)
	case fmtBC2:
		err = decodeBlocks(img, body, 16, decodeBC2Block)
	case fmtBC3:
		err = decodeBlocks(img, body, 16, decodeBC3Block)
	case fmtRGBA:
		err = decodeMasked(img, body, masks)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// decodeBlocks walks the 4x4 blocks of the top mip level. fn fills a
// 16-pixel RGBA buffer from one block.
func decodeBlocks(img *image.NRGBA, body []byte, blockSize int, fn func(block []byte, out *[64]byte)) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bw, bh := (w+3)/4, (h+3)/4
	if len(body) < bw*bh*blockSize {
		return errors.New("texture: truncated DDS block data")
	}
	var px [64]byte
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			off := (by*bw + bx) * blockSize
			fn(body[off:off+blockSize], &px)
			for py := 0; py < 4; py++ {
				y := by*4 + py
				if y >= h {
					break
				}
				for pxi := 0; pxi < 4; pxi++ {
					x := bx*4 + pxi
					if x >= w {
						break
					}
					copy(img.Pix[img.PixOffset(x, y):], px[(py*4+pxi)*4:(py*4+pxi)*4+4])
				}
			}
		}
	}
	return nil
}

func expand565(c uint16) (r, g, b byte) {
	r = byte(c >> 11 & 0x1f)
	g = byte(c >> 5 & 0x3f)
	b = byte(c & 0x1f)
	return r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2
}

// decodeColors fills the RGB (and, in three-color mode, alpha) channels
// from an 8-byte BC1 color block.
func decodeColors(block []byte, out *[64]byte, allowTransparent bool) {
	c0 := binary.LittleEndian.Uint16(block[0:])
	c1 := binary.LittleEndian.Uint16(block[2:])
	var pal [4][4]byte
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)
	pal[0] = [4]byte{r0, g0, b0, 255}
	pal[1] = [4]byte{r1, g1, b1, 255}
	if c0 > c1 || !allowTransparent {
		pal[2] = [4]byte{mix(r0, r1, 2, 1), mix(g0, g1, 2, 1), mix(b0, b1, 2, 1), 255}
		pal[3] = [4]byte{mix(r0, r1, 1, 2), mix(g0, g1, 1, 2), mix(b0, b1, 1, 2), 255}
	} else {
		pal[2] = [4]byte{byte((int(r0) + int(r1)) / 2), byte((int(g0) + int(g1)) / 2), byte((int(b0) + int(b1)) / 2), 255}
		pal[3] = [4]byte{0, 0, 0, 0}
	}
	idx := binary.LittleEndian.Uint32(block[4:])
	for i := 0; i < 16; i++ {
		copy(out[i*4:i*4+4], pal[idx>>(2*i)&3][:])
	}
}

// mix returns (wa*a + wb*b) / (wa+wb).
func mix(a, b byte, wa, wb int) byte {
	return byte((wa*int(a) + wb*int(b)) / (wa + wb))
}

func decodeBC1Block(block []byte, out *[64]byte) {
	decodeColors(block, out, true)
}

func decodeBC2Block(block []byte, out *[64]byte) {
	decodeColors(block[8:], out, false)
	alpha := binary.LittleEndian.Uint64(block[0:])
	for i := 0; i < 16; i++ {
		a := byte(alpha >> (4 * i) & 0xf)
		out[i*4+3] = a<<4 | a
	}
}

func decodeBC3Block(block []byte, out *[64]byte) {
	decodeColors(block[8:], out, false)
	a0, a1 := int(block[0]), int(block[1])
	var pal [8]byte
	pal[0], pal[1] = byte(a0), byte(a1)
	if a0 > a1 {
		for i := 1; i < 7; i++ {
			pal[i+1] = byte(((7-i)*a0 + i*a1) / 7)
		}
	} else {
		for i := 1; i < 5; i++ {
			pal[i+1] = byte(((5-i)*a0 + i*a1) / 5)
		}
		pal[6], pal[7] = 0, 255
	}
	var bitsLE uint64
	for i := 0; i < 6; i++ {
		bitsLE |= uint64(block[2+i]) << (8 * i)
	}
	for i := 0; i < 16; i++ {
		out[i*4+3] = pal[bitsLE>>(3*i)&7]
	}
}

// decodeMasked reads 24/32-bit pixels through channel masks.
func decodeMasked(img *image.NRGBA, body []byte, m pixelMasks) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	bpp := m.bitCount / 8
	if len(body) < w*h*bpp {
		return errors.New("texture: truncated DDS pixel data")
	}
	for i := 0; i < w*h; i++ {
		var v uint32
		for b := 0; b < bpp; b++ {
			v |= uint32(body[i*bpp+b]) << (8 * b)
		}
		p := img.Pix[i*4 : i*4+4]
		p[0] = channel(v, m.r)
		p[1] = channel(v, m.g)
		p[2] = channel(v, m.b)
		if m.a == 0 {
			p[3] = 255
		} else {
			p[3] = channel(v, m.a)
		}
	}
	return nil
}

// channel extracts the masked bits of v scaled to 8 bits.
func channel(v, mask uint32) byte {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	c := uint64(v&mask) >> shift
	full := uint64(1)<<width - 1
	return byte(c * 255 / full)
}
