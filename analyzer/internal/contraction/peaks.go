package contraction

import (
	"math"
	"sort"
)

// localMaxima находит индексы точек, которые выше обоих соседей.
// Для плато шириной в несколько сэмплов берется его середина (с округлением вниз).
func localMaxima(x []float64) []int {
	peaks := make([]int, 0)
	n := len(x)

	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < n-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				left := i
				right := ahead - 1
				peaks = append(peaks, (left+right)/2)
				i = ahead
			}
		}
		i++
	}

	return peaks
}

// selectByHeight оставляет пики с амплитудой не ниже minHeight
func selectByHeight(x []float64, peaks []int, minHeight float64) []int {
	kept := peaks[:0:0]
	for _, p := range peaks {
		if x[p] >= minHeight {
			kept = append(kept, p)
		}
	}
	return kept
}

// selectByDistance жадно подавляет пики ближе distance сэмплов друг к другу.
// Пики обходятся от самого высокого к самому низкому; при равной высоте
// первым обрабатывается правый.
func selectByDistance(x []float64, peaks []int, distance float64) []int {
	if len(peaks) < 2 {
		return peaks
	}

	minGap := int(math.Ceil(distance))

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] < x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < minGap; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < minGap; k++ {
			keep[k] = false
		}
	}

	kept := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			kept = append(kept, p)
		}
	}
	return kept
}

// prominence описывает выраженность пика относительно его базовой линии
type prominence struct {
	value     float64
	leftBase  int
	rightBase int
}

// peakProminence ищет минимум по обе стороны пика до первой точки выше него
// и берет более высокий из двух минимумов за базовую линию.
func peakProminence(x []float64, peak int) prominence {
	leftMin := x[peak]
	leftBase := peak
	for i := peak; i >= 0 && x[i] <= x[peak]; i-- {
		if x[i] < leftMin {
			leftMin = x[i]
			leftBase = i
		}
	}

	rightMin := x[peak]
	rightBase := peak
	for i := peak; i < len(x) && x[i] <= x[peak]; i++ {
		if x[i] < rightMin {
			rightMin = x[i]
			rightBase = i
		}
	}

	return prominence{
		value:     x[peak] - math.Max(leftMin, rightMin),
		leftBase:  leftBase,
		rightBase: rightBase,
	}
}

// peakWidth возвращает ширину пика в сэмплах на уровне relHeight от выраженности,
// с линейной интерполяцией точек пересечения.
func peakWidth(x []float64, peak int, prom prominence, relHeight float64) float64 {
	height := x[peak] - prom.value*relHeight

	i := peak
	for prom.leftBase < i && height < x[i] {
		i--
	}
	leftIP := float64(i)
	if x[i] < height {
		leftIP += (height - x[i]) / (x[i+1] - x[i])
	}

	i = peak
	for i < prom.rightBase && height < x[i] {
		i++
	}
	rightIP := float64(i)
	if x[i] < height {
		rightIP -= (height - x[i]) / (x[i-1] - x[i])
	}

	return rightIP - leftIP
}
