package lossless

// decode_image.go implements prefix code reading and the entropy-coded
// image data decoding loop.

import "github.com/dany5639/webp/internal/webperr"

// readCodeLengths decodes the code lengths of a normal prefix code using the
// code-length code in clTable.
func (dec *Decoder) readCodeLengths(clTable *HuffmanTable, numSymbols int) ([]int, error) {
	codeLengths := make([]int, numSymbols)
	prevCodeLen := DefaultCodeLength

	maxSymbol := numSymbols
	if dec.br.ReadBit() {
		lengthNBits := 2 + 2*int(dec.br.ReadBits(3))
		maxSymbol = 2 + int(dec.br.ReadBits(lengthNBits))
		if maxSymbol > numSymbols {
			return nil, webperr.BitstreamError.Errorf("vp8l", "max symbol %d exceeds alphabet size %d", maxSymbol, numSymbols)
		}
	}

	for symbol := 0; symbol < numSymbols && maxSymbol > 0; maxSymbol-- {
		codeLen := clTable.ReadSymbol(dec.br)
		if codeLen < codeLengthLiterals {
			codeLengths[symbol] = codeLen
			symbol++
			if codeLen != 0 {
				prevCodeLen = codeLen
			}
			continue
		}

		slot := codeLen - codeLengthLiterals
		repeat := int(dec.br.ReadBits(codeLengthExtraBits[slot])) + codeLengthRepeatOffsets[slot]
		if symbol+repeat > numSymbols {
			return nil, webperr.BitstreamError.Errorf("vp8l", "code length repeat overruns alphabet")
		}
		length := 0
		if codeLen == 16 {
			length = prevCodeLen
		}
		for ; repeat > 0; repeat-- {
			codeLengths[symbol] = length
			symbol++
		}
	}

	if dec.br.IsEndOfStream() {
		return nil, errTruncated()
	}
	return codeLengths, nil
}

// readHuffmanCode reads one prefix code over an alphabet of alphabetSize
// symbols and builds its lookup table.
func (dec *Decoder) readHuffmanCode(alphabetSize int) (HuffmanTable, error) {
	var codeLengths []int
	if dec.br.ReadBit() {
		// Simple code: 1 or 2 symbols of length 1. Symbols outside the
		// alphabet are ignored.
		codeLengths = make([]int, alphabetSize)
		numSymbols := int(dec.br.ReadBits(1)) + 1
		firstBits := 1
		if dec.br.ReadBit() {
			firstBits = 8
		}
		if s := int(dec.br.ReadBits(firstBits)); s < alphabetSize {
			codeLengths[s] = 1
		}
		if numSymbols == 2 {
			if s := int(dec.br.ReadBits(8)); s < alphabetSize {
				codeLengths[s] = 1
			}
		}
	} else {
		var clCodeLengths [CodeLengthCodes]int
		numCodes := int(dec.br.ReadBits(4)) + 4
		for i := 0; i < numCodes; i++ {
			clCodeLengths[CodeLengthCodeOrder[i]] = int(dec.br.ReadBits(3))
		}
		if dec.br.IsEndOfStream() {
			return HuffmanTable{}, errTruncated()
		}
		clTable, err := BuildHuffmanTable(LengthsTableBits, clCodeLengths[:])
		if err != nil {
			return HuffmanTable{}, err
		}
		if codeLengths, err = dec.readCodeLengths(&clTable, alphabetSize); err != nil {
			return HuffmanTable{}, err
		}
	}

	if dec.br.IsEndOfStream() {
		return HuffmanTable{}, errTruncated()
	}
	return BuildHuffmanTable(HuffmanTableBits, codeLengths)
}

// readHuffmanCodes reads the optional meta prefix code image and all prefix
// code groups of one image level.
func (dec *Decoder) readHuffmanCodes(xsize, ysize, colorCacheBits int, allowMeta bool) (*metadata, error) {
	hdr := &metadata{huffmanMask: ^0}
	numGroups := 1
	var mapping []int // bitstream group index to stored index, -1 when unused

	if allowMeta && dec.br.ReadBit() {
		bits := MinHuffmanBits + int(dec.br.ReadBits(NumHuffmanBits))
		hxsize := SubSampleSize(xsize, bits)
		hysize := SubSampleSize(ysize, bits)
		img, err := dec.decodeImageStream(hxsize, hysize, false)
		if err != nil {
			return nil, err
		}

		for i, p := range img {
			g := int(p>>8) & 0xffff
			img[i] = uint32(g)
			if g >= numGroups {
				numGroups = g + 1
			}
		}

		// Only groups referenced by a tile are kept. The others are still
		// read to stay in sync with the bitstream.
		mapping = make([]int, numGroups)
		for i := range mapping {
			mapping[i] = -1
		}
		used := 0
		for i, g := range img {
			if mapping[g] == -1 {
				mapping[g] = used
				used++
			}
			img[i] = uint32(mapping[g])
		}

		hdr.huffmanImage = img
		hdr.huffmanBits = bits
		hdr.huffmanXSize = hxsize
		hdr.huffmanMask = 1<<bits - 1
		hdr.groups = make([]HTreeGroup, used)
	} else {
		hdr.groups = make([]HTreeGroup, 1)
	}

	for i := 0; i < numGroups; i++ {
		var g HTreeGroup
		for j := HuffGreen; j <= HuffDist; j++ {
			table, err := dec.readHuffmanCode(alphabetSize(j, colorCacheBits))
			if err != nil {
				return nil, err
			}
			g.HTrees[j] = table
		}
		switch {
		case mapping == nil:
			hdr.groups[i] = g
		case mapping[i] >= 0:
			hdr.groups[mapping[i]] = g
		}
	}
	return hdr, nil
}

// readCopyValue decodes a backward reference length or distance code from
// its prefix symbol and extra bits.
func (dec *Decoder) readCopyValue(symbol int) int {
	if symbol < 4 {
		return symbol + 1
	}
	extraBits := (symbol - 2) >> 1
	offset := (2 + (symbol & 1)) << extraBits
	return offset + int(dec.br.ReadBits(extraBits)) + 1
}

// decodeImageData decodes width*height pixels into data using the prefix
// codes of hdr. Every decoded pixel enters the color cache before the next
// one is produced.
func (dec *Decoder) decodeImageData(data []uint32, width, height int, hdr *metadata) error {
	br := dec.br
	cache := hdr.colorCache
	lenCodeLimit := NumLiteralCodes + NumLengthCodes
	colorCacheLimit := lenCodeLimit
	if cache != nil {
		colorCacheLimit += cache.Size()
	}

	total := width * height
	pos, x, y := 0, 0, 0
	group := hdr.group(0, 0)
	for pos < total {
		if x&hdr.huffmanMask == 0 {
			group = hdr.group(x, y)
		}

		code := group.HTrees[HuffGreen].ReadSymbol(br)
		switch {
		case code < NumLiteralCodes:
			red := group.HTrees[HuffRed].ReadSymbol(br)
			blue := group.HTrees[HuffBlue].ReadSymbol(br)
			alpha := group.HTrees[HuffAlpha].ReadSymbol(br)
			argb := uint32(alpha)<<24 | uint32(red)<<16 | uint32(code)<<8 | uint32(blue)
			data[pos] = argb
			if cache != nil {
				cache.Insert(argb)
			}
			pos++
			if x++; x == width {
				x = 0
				y++
			}

		case code < lenCodeLimit:
			length := dec.readCopyValue(code - NumLiteralCodes)
			distSymbol := group.HTrees[HuffDist].ReadSymbol(br)
			dist := PlaneCodeToDistance(width, dec.readCopyValue(distSymbol))
			if br.IsEndOfStream() {
				return errTruncated()
			}
			if dist > pos {
				return webperr.BitstreamError.Errorf("vp8l", "distance %d before start of image at pixel %d", dist, pos)
			}
			if length > total-pos {
				return webperr.BitstreamError.Errorf("vp8l", "copy of %d pixels overruns image at pixel %d", length, pos)
			}
			for i := 0; i < length; i++ {
				argb := data[pos-dist]
				data[pos] = argb
				if cache != nil {
					cache.Insert(argb)
				}
				pos++
			}
			x += length
			for x >= width {
				x -= width
				y++
			}
			if pos < total {
				group = hdr.group(x, y)
			}

		case code < colorCacheLimit:
			argb := cache.Lookup(code - lenCodeLimit)
			data[pos] = argb
			cache.Insert(argb)
			pos++
			if x++; x == width {
				x = 0
				y++
			}

		default:
			return webperr.BitstreamError.Errorf("vp8l", "invalid green symbol %d", code)
		}

		if br.IsEndOfStream() {
			return errTruncated()
		}
	}
	return nil
}
