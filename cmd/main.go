package main

import (
	"log"
	"net/http"
	"os"

	"github.com/NexumEnergia/api-cobranca/internal/auth"
	"github.com/NexumEnergia/api-cobranca/internal/boleto"
	"github.com/NexumEnergia/api-cobranca/internal/carne"
	"github.com/NexumEnergia/api-cobranca/internal/cliente"
	"github.com/NexumEnergia/api-cobranca/internal/contrato"
	"github.com/NexumEnergia/api-cobranca/internal/fatura"
	"github.com/NexumEnergia/api-cobranca/internal/gateway"
	utilsdb "github.com/NexumEnergia/api-cobranca/internal/utils/db"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Erro ao iniciar logger:", err)
	}
	defer logger.Sync()

	db, err := utilsdb.GetDB()
	if err != nil {
		log.Fatal("Erro ao conectar no banco:", err)
	}

	// AutoMigrate para todos os modelos
	if err := cliente.Migrate(db); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := contrato.Migrate(db); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := fatura.Migrate(db); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := carne.Migrate(db); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}
	if err := boleto.Migrate(db); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}

	// Gateway de pagamento: configuração explícita, sem estado global.
	gw := gateway.NewHTTPClient(gateway.Config{
		BaseURL: os.Getenv("GATEWAY_BASE_URL"),
		APIKey:  os.Getenv("GATEWAY_API_KEY"),
	}, logger)

	// Repositórios e serviços
	clienteRepo := cliente.NewRepository()
	contratoRepo := contrato.NewRepository(db)
	faturaRepo := fatura.NewRepository(db)
	carneRepo := carne.NewRepository(db)
	boletoRepo := boleto.NewRepository(db)

	contratoService := contrato.NewService(contratoRepo, logger)
	boletoService := boleto.NewService(boletoRepo, clienteRepo, gw, logger)
	carneService := carne.NewService(carneRepo, boletoService, logger)
	geradorFaturas := fatura.NewGerador(faturaRepo, contratoRepo, clienteRepo, logger)

	// Handlers
	clienteHandler := cliente.NewHandler(db)
	contratoHandler := contrato.NewHandler(contratoService)
	faturaHandler := fatura.NewHandler(geradorFaturas)
	carneHandler := carne.NewHandler(carneService)
	boletoHandler := boleto.NewHandler(boletoService)

	// Router
	r := mux.NewRouter()

	// Rotas públicas
	r.HandleFunc("/login", clienteHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(auth.MiddlewareAutenticacao)

	// Rotas de clientes
	api.Handle("/clientes", auth.RequireAdmin(http.HandlerFunc(clienteHandler.CriarCliente))).Methods("POST")
	api.HandleFunc("/clientes", clienteHandler.ListarClientes).Methods("GET")
	api.HandleFunc("/clientes/{id}", clienteHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/clientes/{id}", clienteHandler.AtualizarCliente).Methods("PUT")
	api.Handle("/clientes/{id}", auth.RequireAdmin(http.HandlerFunc(clienteHandler.DeletarCliente))).Methods("DELETE")
	api.Handle("/clientes/{id}/senha-temporaria", auth.RequireAdmin(http.HandlerFunc(clienteHandler.GerarSenhaTemporaria))).Methods("POST")

	// Rotas de contratos
	api.HandleFunc("/contratos", contratoHandler.Criar).Methods("POST")
	api.HandleFunc("/contratos", contratoHandler.Listar).Methods("GET")
	api.HandleFunc("/contratos/{id}", contratoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/contratos/{id}", contratoHandler.Atualizar).Methods("PATCH")
	api.HandleFunc("/contratos/{id}", contratoHandler.Excluir).Methods("DELETE")
	api.HandleFunc("/contratos/{id}/assinatura", contratoHandler.Assinar).Methods("POST")
	api.HandleFunc("/contratos/{id}/liberacao", contratoHandler.Liberar).Methods("POST")
	api.HandleFunc("/contratos/{id}/renovacao", contratoHandler.Renovar).Methods("POST")
	api.HandleFunc("/contratos/{id}/historico", contratoHandler.Historico).Methods("GET")
	api.HandleFunc("/clientes/{id}/contratos", contratoHandler.ListarPorCliente).Methods("GET")

	// Rotas de faturas
	api.HandleFunc("/contratos/{id}/faturas", faturaHandler.GerarParaContrato).Methods("POST")
	api.HandleFunc("/faturas/geracao", faturaHandler.GerarParaPeriodo).Methods("POST")
	api.HandleFunc("/faturas", faturaHandler.ListarPorStatus).Methods("GET")
	api.HandleFunc("/faturas/atraso", faturaHandler.MarcarAtrasadas).Methods("POST")
	api.HandleFunc("/faturas/{id}", faturaHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/faturas/{id}/pagamento", faturaHandler.RegistrarPagamento).Methods("POST")
	api.HandleFunc("/clientes/{id}/faturas", faturaHandler.ListarPorCliente).Methods("GET")
	api.HandleFunc("/clientes/{id}/resumo", faturaHandler.ResumoCliente).Methods("GET")

	// Rotas de carnês
	api.HandleFunc("/carnes", carneHandler.Criar).Methods("POST")
	api.HandleFunc("/carnes/{id}", carneHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/carnes/{id}", carneHandler.Excluir).Methods("DELETE")
	api.HandleFunc("/carnes/{id}/parcelas", carneHandler.ListarParcelas).Methods("GET")
	api.HandleFunc("/carnes/{id}/cancelamento", carneHandler.Cancelar).Methods("POST")
	api.HandleFunc("/parcelas/{pid}/pagamento", carneHandler.RegistrarPagamento).Methods("POST")
	api.HandleFunc("/clientes/{id}/carnes", carneHandler.ListarPorCliente).Methods("GET")

	// Rotas de boletos
	api.HandleFunc("/boletos", boletoHandler.Emitir).Methods("POST")
	api.HandleFunc("/boletos/conciliacao", boletoHandler.ConciliarTodos).Methods("POST")
	api.HandleFunc("/boletos/{id}/conciliacao", boletoHandler.Conciliar).Methods("POST")
	api.HandleFunc("/boletos/{id}", boletoHandler.Cancelar).Methods("DELETE")
	api.HandleFunc("/clientes/{id}/boletos", boletoHandler.ListarPorCliente).Methods("GET")

	handler := cors.AllowAll().Handler(r)

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}
	logger.Info("servidor iniciado", zap.String("porta", porta))
	log.Fatal(http.ListenAndServe(":"+porta, handler))
}
