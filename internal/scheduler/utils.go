package scheduler

// timeDistance 返回两个时间段之间相差的格数
func (p *Problem) timeDistance(a, b Assignment) int {
	d := p.timeOrder[a.Time] - p.timeOrder[b.Time]
	if d < 0 {
		return -d
	}
	return d
}
