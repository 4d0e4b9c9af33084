package alpha

// unfilter adds the prediction of method back to every residual of plane,
// in place. The first row is predicted from the left for every method but
// FilterNone, and the first column from the sample above.
func unfilter(method int, plane []byte, width, height int) {
	switch method {
	case FilterHorizontal:
		unfilterHorizontal(plane, width, height)
	case FilterVertical:
		unfilterVertical(plane, width, height)
	case FilterGradient:
		unfilterGradient(plane, width, height)
	}
}

// accumulateRow turns a row of left-predicted residuals into samples.
func accumulateRow(row []byte) {
	for x := 1; x < len(row); x++ {
		row[x] += row[x-1]
	}
}

func unfilterHorizontal(plane []byte, width, height int) {
	accumulateRow(plane[:width])
	for y := 1; y < height; y++ {
		row := plane[y*width : (y+1)*width]
		row[0] += plane[(y-1)*width]
		accumulateRow(row)
	}
}

func unfilterVertical(plane []byte, width, height int) {
	accumulateRow(plane[:width])
	for y := 1; y < height; y++ {
		prev := plane[(y-1)*width : y*width]
		row := plane[y*width : (y+1)*width]
		for x := range row {
			row[x] += prev[x]
		}
	}
}

func unfilterGradient(plane []byte, width, height int) {
	accumulateRow(plane[:width])
	for y := 1; y < height; y++ {
		prev := plane[(y-1)*width : y*width]
		row := plane[y*width : (y+1)*width]
		// With left = top = top-left the gradient of the first column
		// reduces to the sample above.
		left, topLeft := prev[0], prev[0]
		for x := range row {
			top := prev[x]
			pred := int(left) + int(top) - int(topLeft)
			if pred < 0 {
				pred = 0
			} else if pred > 255 {
				pred = 255
			}
			row[x] += byte(pred)
			left, topLeft = row[x], top
		}
	}
}
