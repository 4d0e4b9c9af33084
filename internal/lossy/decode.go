// Package lossy decodes VP8 key frames, the lossy bitstream of WebP, into
// 4:2:0 Y'CbCr planes.
//
// Decoding follows the frame structure: the first partition carries the
// frame headers and the per-macroblock prediction modes, the token
// partitions carry the residual coefficients. Each macroblock row is
// predicted, reconstructed and loop-filtered before the next one is parsed.
package lossy

import (
	"encoding/binary"

	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/vp8tab"
	"github.com/dany5639/webp/internal/webperr"
)

// FrameHeader contains per-frame metadata from the frame tag.
type FrameHeader struct {
	KeyFrame        bool
	Profile         uint8
	Show            bool
	PartitionLength uint32
}

// PictureHeader contains picture dimensions and scaling info.
type PictureHeader struct {
	Width      int
	Height     int
	XScale     uint8
	YScale     uint8
	Colorspace uint8
	ClampType  uint8
}

// SegmentHeader describes segment-based quantizer/filter overrides.
type SegmentHeader struct {
	UseSegment     bool
	UpdateMap      bool
	AbsoluteDelta  bool
	Quantizer      [NumMBSegments]int8
	FilterStrength [NumMBSegments]int8
}

// FilterHeader describes the loop filter parameters.
type FilterHeader struct {
	Simple      bool
	Level       int
	Sharpness   int
	UseLFDelta  bool
	RefLFDelta  [NumRefLFDeltas]int
	ModeLFDelta [NumModeLFDeltas]int
}

// FInfo holds per-macroblock filter strength info.
type FInfo struct {
	FLimit    uint8 // 0 disables filtering
	FILevel   uint8
	FInner    bool
	HevThresh uint8
}

// MB holds top/left context for coefficient parsing.
type MB struct {
	Nz   uint8 // non-zero flags: 4 luma bits, then 2 bits each for U and V
	NzDC uint8 // non-zero Y2 block
}

// MBData holds the parsed modes and coefficients of one macroblock.
type MBData struct {
	Coeffs    [384]int16 // 16 luma, 4 U and 4 V blocks of 16 coefficients
	IsI4x4    bool
	IModes    [16]uint8 // one 16x16 mode or sixteen 4x4 modes
	UVMode    uint8
	NonZeroY  uint32 // 2-bit transform code per luma block, block 0 first
	NonZeroUV uint32
	Skip      bool
	Segment   uint8
}

// TopSamples holds the unfiltered bottom row of one macroblock, used to
// predict the macroblock below.
type TopSamples struct {
	Y [16]uint8
	U [8]uint8
	V [8]uint8
}

// Planes is a decoded frame. The planes are padded to whole macroblocks;
// Width and Height give the visible size. U and V have (Width+1)/2 by
// (Height+1)/2 visible samples.
type Planes struct {
	Y, U, V  []byte
	YStride  int
	UVStride int
	Width    int
	Height   int
}

// Decoder is the VP8 key frame decoder. A Decoder decodes one frame and is
// then discarded.
type Decoder struct {
	frmHdr    FrameHeader
	picHdr    PictureHeader
	filterHdr FilterHeader
	segHdr    SegmentHeader

	// Dimensions in macroblock units.
	mbW, mbH int
	mbX, mbY int

	br               *bitio.BoolReader // first partition
	parts            [MaxNumPartitions]*bitio.BoolReader
	numPartsMinusOne int

	proba        Proba
	useSkipProba bool
	skipP        uint8

	dqm [NumMBSegments]QuantMatrix

	filterType int // 0 off, 1 simple, 2 normal
	fstrengths [NumMBSegments][2]FInfo

	intraT []uint8      // 4x4 modes of the bottom row of the row above, 4 per macroblock
	intraL [4]uint8     // 4x4 modes of the right column of the left macroblock
	yuvT   []TopSamples // per macroblock column
	mbInfo []MB         // mbW+1 entries; index 0 is the left context
	fInfo  []FInfo
	yuvB   []byte // reconstruction buffer, YUVSize bytes
	mbData []MBData

	// Whole-frame output planes, padded to macroblocks.
	cacheY, cacheU, cacheV []byte
	cacheYStride           int
	cacheUVStride          int
}

// DecodeFrame decodes the VP8 chunk payload of a width x height key frame.
func DecodeFrame(payload []byte, width, height int) (*Planes, error) {
	dec := &Decoder{}
	if err := dec.parseHeaders(payload); err != nil {
		return nil, err
	}
	if dec.picHdr.Width != width || dec.picHdr.Height != height {
		return nil, webperr.BitstreamError.Errorf("vp8", "frame is %dx%d, container says %dx%d",
			dec.picHdr.Width, dec.picHdr.Height, width, height)
	}
	dec.initFrame()
	dec.precomputeFilterStrengths()
	if err := dec.parseFrame(); err != nil {
		return nil, err
	}
	return &Planes{
		Y:        dec.cacheY,
		U:        dec.cacheU,
		V:        dec.cacheV,
		YStride:  dec.cacheYStride,
		UVStride: dec.cacheUVStride,
		Width:    width,
		Height:   height,
	}, nil
}

// parseHeaders reads the frame tag, the key frame header and the headers
// of the first partition, and sets up the token partitions.
func (dec *Decoder) parseHeaders(data []byte) error {
	if len(data) < frameHeaderSize {
		return webperr.BitstreamError.Errorf("vp8", "frame header needs %d bytes, have %d", frameHeaderSize, len(data))
	}

	bits := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	dec.frmHdr.KeyFrame = bits&1 == 0
	dec.frmHdr.Profile = uint8(bits>>1) & 7
	dec.frmHdr.Show = (bits>>4)&1 != 0
	dec.frmHdr.PartitionLength = bits >> 5

	if dec.frmHdr.Profile > 3 {
		return webperr.BitstreamError.Errorf("vp8", "bad profile %d", dec.frmHdr.Profile)
	}
	if !dec.frmHdr.KeyFrame {
		return webperr.UnsupportedFeature.Errorf("vp8", "inter frame")
	}
	if !dec.frmHdr.Show {
		return webperr.UnsupportedFeature.Errorf("vp8", "invisible frame")
	}

	buf := data[3:]
	if buf[0] != 0x9d || buf[1] != 0x01 || buf[2] != 0x2a {
		return webperr.BitstreamError.Errorf("vp8", "bad start code % x", buf[:3])
	}
	dec.picHdr.Width = int(binary.LittleEndian.Uint16(buf[3:5])) & 0x3fff
	dec.picHdr.XScale = buf[4] >> 6
	dec.picHdr.Height = int(binary.LittleEndian.Uint16(buf[5:7])) & 0x3fff
	dec.picHdr.YScale = buf[6] >> 6
	buf = buf[7:]

	if dec.picHdr.Width == 0 || dec.picHdr.Height == 0 {
		return webperr.DimensionOutOfRange.Errorf("vp8", "frame %dx%d", dec.picHdr.Width, dec.picHdr.Height)
	}
	dec.mbW = (dec.picHdr.Width + 15) >> 4
	dec.mbH = (dec.picHdr.Height + 15) >> 4

	ResetProba(&dec.proba)
	dec.segHdr.AbsoluteDelta = true

	partLen := int(dec.frmHdr.PartitionLength)
	if partLen > len(buf) {
		return webperr.BitstreamError.Errorf("vp8", "first partition of %d bytes overruns the %d available", partLen, len(buf))
	}
	dec.br = bitio.NewBoolReader(buf[:partLen])
	tokenBuf := buf[partLen:]

	dec.picHdr.Colorspace = uint8(dec.br.GetBit(0x80))
	dec.picHdr.ClampType = uint8(dec.br.GetBit(0x80))

	if err := dec.parseSegmentHeader(); err != nil {
		return err
	}
	dec.parseFilterHeader()
	if err := dec.parsePartitions(tokenBuf); err != nil {
		return err
	}
	parseQuant(dec.br, &dec.segHdr, dec.dqm[:])

	// Key frames always refresh the entropy context.
	dec.br.GetBit(0x80)

	dec.parseProba()
	if dec.br.EOF() {
		return webperr.BitstreamError.Errorf("vp8", "first partition ends inside the frame header")
	}
	return nil
}

func (dec *Decoder) parseSegmentHeader() error {
	br := dec.br
	hdr := &dec.segHdr

	hdr.UseSegment = br.GetFlag(0x80)
	if hdr.UseSegment {
		hdr.UpdateMap = br.GetFlag(0x80)
		if br.GetFlag(0x80) { // update data
			hdr.AbsoluteDelta = br.GetFlag(0x80)
			for s := range hdr.Quantizer {
				hdr.Quantizer[s] = int8(br.GetOptionalSigned(7))
			}
			for s := range hdr.FilterStrength {
				hdr.FilterStrength[s] = int8(br.GetOptionalSigned(6))
			}
		}
		if hdr.UpdateMap {
			for s := range dec.proba.Segments {
				if br.GetFlag(0x80) {
					dec.proba.Segments[s] = uint8(br.GetValue(8))
				} else {
					dec.proba.Segments[s] = 255
				}
			}
		}
	} else {
		hdr.UpdateMap = false
	}

	if br.EOF() {
		return webperr.BitstreamError.Errorf("vp8", "first partition ends inside the segment header")
	}
	return nil
}

func (dec *Decoder) parseFilterHeader() {
	br := dec.br
	hdr := &dec.filterHdr

	hdr.Simple = br.GetFlag(0x80)
	hdr.Level = int(br.GetValue(6))
	hdr.Sharpness = int(br.GetValue(3))
	hdr.UseLFDelta = br.GetFlag(0x80)
	if hdr.UseLFDelta && br.GetFlag(0x80) {
		for i := range hdr.RefLFDelta {
			if br.GetFlag(0x80) {
				hdr.RefLFDelta[i] = int(br.GetSignedValue(6))
			}
		}
		for i := range hdr.ModeLFDelta {
			if br.GetFlag(0x80) {
				hdr.ModeLFDelta[i] = int(br.GetSignedValue(6))
			}
		}
	}

	switch {
	case hdr.Level == 0:
		dec.filterType = 0
	case hdr.Simple:
		dec.filterType = 1
	default:
		dec.filterType = 2
	}
}

// parsePartitions sets up the token partition readers. The sizes of all
// but the last partition precede the partition data as 3-byte values.
func (dec *Decoder) parsePartitions(buf []byte) error {
	dec.numPartsMinusOne = 1<<dec.br.GetValue(2) - 1
	lastPart := dec.numPartsMinusOne

	if len(buf) < 3*lastPart {
		return webperr.BitstreamError.Errorf("vp8", "no room for %d partition sizes", lastPart)
	}
	sz := buf
	partStart := buf[3*lastPart:]
	for p := 0; p < lastPart; p++ {
		psize := int(sz[0]) | int(sz[1])<<8 | int(sz[2])<<16
		if psize > len(partStart) {
			return webperr.BitstreamError.Errorf("vp8", "partition %d size %d exceeds remaining %d bytes",
				p, psize, len(partStart))
		}
		dec.parts[p] = bitio.NewBoolReader(partStart[:psize])
		partStart = partStart[psize:]
		sz = sz[3:]
	}
	dec.parts[lastPart] = bitio.NewBoolReader(partStart)
	return nil
}

// initFrame allocates the working memory of the frame.
func (dec *Decoder) initFrame() {
	mbW := dec.mbW

	dec.intraT = make([]uint8, 4*mbW)
	for i := range dec.intraT {
		dec.intraT[i] = vp8tab.BDCPred
	}
	dec.yuvT = make([]TopSamples, mbW)
	dec.mbInfo = make([]MB, mbW+1)
	dec.fInfo = make([]FInfo, mbW)
	dec.mbData = make([]MBData, mbW)
	dec.yuvB = make([]byte, YUVSize)

	dec.cacheYStride = 16 * mbW
	dec.cacheUVStride = 8 * mbW
	dec.cacheY = make([]byte, 16*dec.mbH*dec.cacheYStride)
	dec.cacheU = make([]byte, 8*dec.mbH*dec.cacheUVStride)
	dec.cacheV = make([]byte, 8*dec.mbH*dec.cacheUVStride)
}

// parseFrame decodes every macroblock row.
func (dec *Decoder) parseFrame() error {
	for dec.mbY = 0; dec.mbY < dec.mbH; dec.mbY++ {
		tokenBR := dec.parts[dec.mbY&dec.numPartsMinusOne]

		if err := dec.parseIntraModeRow(); err != nil {
			return err
		}
		for dec.mbX = 0; dec.mbX < dec.mbW; dec.mbX++ {
			if err := dec.decodeMB(tokenBR); err != nil {
				return err
			}
		}
		dec.initScanline()

		dec.reconstructRow()
		if dec.filterType > 0 {
			dec.filterRow()
		}
	}
	return nil
}

// initScanline resets the left context at the end of a macroblock row.
func (dec *Decoder) initScanline() {
	left := &dec.mbInfo[0]
	left.Nz = 0
	left.NzDC = 0
	for i := range dec.intraL {
		dec.intraL[i] = vp8tab.BDCPred
	}
	dec.mbX = 0
}

// kScan holds the offsets of the sixteen 4x4 luma blocks in the
// reconstruction buffer.
var kScan = [16]int{
	0 + 0*BPS, 4 + 0*BPS, 8 + 0*BPS, 12 + 0*BPS,
	0 + 4*BPS, 4 + 4*BPS, 8 + 4*BPS, 12 + 4*BPS,
	0 + 8*BPS, 4 + 8*BPS, 8 + 8*BPS, 12 + 8*BPS,
	0 + 12*BPS, 4 + 12*BPS, 8 + 12*BPS, 12 + 12*BPS,
}
