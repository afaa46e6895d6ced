package port

import "spot-counter/internal/domain/entity"

// DiagnosticsSink принимает замеры всех оценённых кандидатов, в том числе отклонённых
type DiagnosticsSink interface {
	Record(sample entity.PhotometricSample)
}

// ContrastStats собирает замеры и считает перцентили по партии
type ContrastStats interface {
	DiagnosticsSink

	// Percentiles возвращает перцентили абсолютной и относительной разницы
	Percentiles() entity.ContrastPercentiles

	// Reset очищает накопленные замеры
	Reset()
}
