package googlefit

import "strconv"

// Вложенная структура ответа (bucket → dataset → point → value)
// разбирается защитно: любой отсутствующий уровень даёт NoData,
// а не панику.

func firstIntValue(resp aggregateResponse) (int64, Completeness) {
	for _, b := range resp.Bucket {
		for _, ds := range b.Dataset {
			for _, p := range ds.Point {
				for _, v := range p.Value {
					if v.IntVal != nil {
						return *v.IntVal, Complete
					}
				}
			}
		}
	}
	return 0, NoData
}

// sumFloatValues folds every bucket/dataset/point — провайдер может
// раздробить значение на несколько точек.
func sumFloatValues(resp aggregateResponse) (float64, Completeness) {
	var sum float64
	bucketsTotal := 0
	bucketsWithData := 0
	for _, b := range resp.Bucket {
		bucketsTotal++
		seen := false
		for _, ds := range b.Dataset {
			for _, p := range ds.Point {
				for _, v := range p.Value {
					if v.FpVal != nil {
						sum += *v.FpVal
						seen = true
					} else if v.IntVal != nil {
						sum += float64(*v.IntVal)
						seen = true
					}
				}
			}
		}
		if seen {
			bucketsWithData++
		}
	}
	return sum, bucketCompleteness(bucketsTotal, bucketsWithData)
}

func bucketCompleteness(total, withData int) Completeness {
	switch {
	case withData == 0:
		return NoData
	case withData < total:
		return Partial
	default:
		return Complete
	}
}

func bucketValue(b bucket) (float64, bool) {
	var sum float64
	found := false
	for _, ds := range b.Dataset {
		for _, p := range ds.Point {
			for _, v := range p.Value {
				if v.FpVal != nil {
					sum += *v.FpVal
					found = true
				} else if v.IntVal != nil {
					sum += float64(*v.IntVal)
					found = true
				}
			}
		}
	}
	return sum, found
}

// lastPointValue возвращает значение последней точки корзины.
func lastPointValue(b bucket) (float64, bool) {
	for i := len(b.Dataset) - 1; i >= 0; i-- {
		points := b.Dataset[i].Point
		for j := len(points) - 1; j >= 0; j-- {
			values := points[j].Value
			for k := len(values) - 1; k >= 0; k-- {
				if values[k].FpVal != nil {
					return *values[k].FpVal, true
				}
				if values[k].IntVal != nil {
					return float64(*values[k].IntVal), true
				}
			}
		}
	}
	return 0, false
}

func parseMillis(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
