package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// адрес health-check сервера из configs/server.yaml
const healthURL = "http://127.0.0.1:3000/health"

func main() {
	fmt.Println("Запуск сервиса поисковых заказов...")

	clientName := "suchctl"
	if runtime.GOOS == "windows" {
		clientName = "suchctl.exe"
	}
	// запускаем сервер на фоне
	server := exec.Command("go", "run", "./cmd/server")
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr

	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска сервера: %v\n", err)
		return
	}

	if !waitHealthy(30 * time.Second) {
		fmt.Println("Сервер не ответил на /health, смотри логи выше")
	}

	// собираем клиента
	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка клиента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/suchctl")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки клиента: %v\n", err)
		}
		if runtime.GOOS != "windows" {
			_ = os.Chmod(clientName, 0755)
		}
	}

	fmt.Println("Сервер запущен: http://127.0.0.1:3000")
	if runtime.GOOS == "windows" {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: .\\suchctl.exe")
	} else {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: ./suchctl")
	}

	_ = server.Wait()
}

// waitHealthy опрашивает /health, пока сервер не ответит 200 или не выйдет время.
func waitHealthy(limit time.Duration) bool {
	deadline := time.Now().Add(limit)
	for time.Now().Before(deadline) {
		res, err := http.Get(healthURL)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}
