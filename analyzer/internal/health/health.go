package health

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName - имя сервиса анализатора в gRPC health
const ServiceName = "ctg.v1.ContractionAnalyzer"

// HealthServer хранит статусы сервисов и уведомляет Watch-подписчиков об изменениях
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer

	mu       sync.RWMutex
	services map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
	watchers map[string][]chan grpc_health_v1.HealthCheckResponse_ServingStatus
}

func NewHealthServer() *HealthServer {
	return &HealthServer{
		services: map[string]grpc_health_v1.HealthCheckResponse_ServingStatus{
			"": grpc_health_v1.HealthCheckResponse_SERVING,
		},
		watchers: make(map[string][]chan grpc_health_v1.HealthCheckResponse_ServingStatus),
	}
}

func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	servingStatus, exists := h.services[req.GetService()]
	if !exists {
		return nil, status.Error(codes.NotFound, "service not found")
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: servingStatus,
	}, nil
}

// Watch отправляет текущий статус и затем каждое изменение.
// Для неизвестного сервиса отправляется SERVICE_UNKNOWN.
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	service := req.GetService()
	updates := make(chan grpc_health_v1.HealthCheckResponse_ServingStatus, 1)

	h.mu.Lock()
	current, exists := h.services[service]
	if !exists {
		current = grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN
	}
	h.watchers[service] = append(h.watchers[service], updates)
	h.mu.Unlock()

	defer h.removeWatcher(service, updates)

	if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: current}); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case next := <-updates:
			if next == current {
				continue
			}
			current = next
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: current}); err != nil {
				return err
			}
		}
	}
}

func (h *HealthServer) SetServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
}

func (h *HealthServer) SetNotServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Serving сообщает, обслуживает ли сервис запросы
func (h *HealthServer) Serving(service string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.services[service] == grpc_health_v1.HealthCheckResponse_SERVING
}

// Shutdown переводит все сервисы в NOT_SERVING
func (h *HealthServer) Shutdown() {
	h.mu.Lock()
	services := make([]string, 0, len(h.services))
	for service := range h.services {
		services = append(services, service)
	}
	h.mu.Unlock()

	for _, service := range services {
		h.SetNotServingStatus(service)
	}
}

func (h *HealthServer) setStatus(service string, servingStatus grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.services[service] = servingStatus
	for _, ch := range h.watchers[service] {
		// в канале держим только последний статус
		select {
		case <-ch:
		default:
		}
		ch <- servingStatus
	}
}

func (h *HealthServer) removeWatcher(service string, ch chan grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers := h.watchers[service]
	for i, w := range watchers {
		if w == ch {
			h.watchers[service] = append(watchers[:i], watchers[i+1:]...)
			break
		}
	}
	if len(h.watchers[service]) == 0 {
		delete(h.watchers, service)
	}
}
