package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/vsgo/appcore/internal/config"
	"github.com/vsgo/appcore/internal/gateway"
	"github.com/vsgo/appcore/internal/infrastructure/authapi"
	"github.com/vsgo/appcore/internal/infrastructure/cache"
	"github.com/vsgo/appcore/internal/infrastructure/docstore"
	"github.com/vsgo/appcore/internal/infrastructure/monitor"
	"github.com/vsgo/appcore/internal/services"
	"github.com/vsgo/appcore/internal/services/lifecycle"
	"github.com/vsgo/appcore/internal/session"
	"github.com/vsgo/appcore/pkg/logger"
	remoteRepo "github.com/vsgo/appcore/repository/remote"
	authUC "github.com/vsgo/appcore/usecase/auth"
	productUC "github.com/vsgo/appcore/usecase/product"
	taskUC "github.com/vsgo/appcore/usecase/task"
)

const usage = `usage:
  app login    -email <email> -password <password>
  app register -username <name> -email <email> -password <pw> -confirm <pw>
  app logout
  app whoami
  app tasks    list
  app tasks    add -title <title> [-desc <text>] [-date DD/MM/YYYY]
  app tasks    done -id <id>
  app tasks    rm -id <id>
  app products list
  app products add -name <name> -price <price> -category <cat> [-desc <text>]
  app products rm -id <id>`

type app struct {
	auth     *authUC.UseCase
	tasks    *taskUC.UseCase
	products *productUC.UseCase
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)

	sessionCache, err := cache.Open(cfg.Cache.Path, "session")
	if err != nil {
		zapLogger.Fatal("failed to open session cache", zap.Error(err))
	}
	manager.Register("session_cache", func(ctx context.Context) error {
		return sessionCache.Close()
	})

	store := docstore.New(cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Remote.RequestTimeout)
	authClient := authapi.New(cfg.Remote.AuthBaseURL, cfg.Remote.APIKey, cfg.Remote.RequestTimeout)

	mon := monitor.New(store, cfg.Probe.Interval, cfg.Probe.Timeout, zapLogger)
	mon.Check(ctx)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sessions := session.New(authClient, sessionCache, zapLogger)
	sessions.Restore(ctx)

	refresher := services.NewSessionRefresher(sessions, zapLogger, services.RefresherConfig{
		Interval: cfg.Session.RefreshInterval,
		Leeway:   cfg.Session.ExpiryLeeway,
	})
	refresher.Start()
	manager.Register("session_refresher", func(ctx context.Context) error {
		refresher.Stop(ctx)
		return nil
	})

	gw := gateway.New(store, sessions, zapLogger)
	taskRepo := remoteRepo.NewTaskRepository(gw)
	productRepo := remoteRepo.NewProductRepository(gw)

	a := &app{
		auth:     authUC.New(sessions, mon, zapLogger),
		tasks:    taskUC.New(taskRepo, mon, zapLogger),
		products: productUC.New(productRepo, mon, zapLogger),
	}

	runErr := a.run(ctx, os.Args[1:])

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args[1:])

		user, err := a.auth.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("masuk sebagai %s <%s>\n", user.Username, user.Email)
		return nil

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		username := fs.String("username", "", "display name")
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		confirm := fs.String("confirm", "", "password confirmation")
		fs.Parse(args[1:])

		if err := a.auth.Register(ctx, authUC.RegisterInput{
			Username:        *username,
			Email:           *email,
			Password:        *password,
			ConfirmPassword: *confirm,
		}); err != nil {
			return err
		}
		fmt.Println("registrasi berhasil, silakan login")
		return nil

	case "logout":
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("berhasil keluar")
		return nil

	case "whoami":
		if user, ok := a.auth.CurrentUser(); ok {
			fmt.Printf("%s <%s>\n", user.Username, user.Email)
		} else {
			fmt.Println("belum login")
		}
		return nil

	case "tasks":
		return a.runTasks(ctx, rest(args))

	case "products":
		return a.runProducts(ctx, rest(args))

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) runTasks(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing tasks subcommand")
	}

	switch args[0] {
	case "list":
		return a.printTasks(ctx)

	case "add":
		fs := flag.NewFlagSet("tasks add", flag.ExitOnError)
		title := fs.String("title", "", "task title")
		desc := fs.String("desc", "", "task description")
		date := fs.String("date", "", "due date (DD/MM/YYYY)")
		fs.Parse(args[1:])

		id, err := a.tasks.CreateTask(ctx, taskUC.CreateInput{
			Title:       *title,
			Description: *desc,
			Date:        *date,
		})
		if err != nil {
			return err
		}
		fmt.Printf("tugas dibuat: %s\n", id)
		return a.printTasks(ctx)

	case "done":
		fs := flag.NewFlagSet("tasks done", flag.ExitOnError)
		id := fs.String("id", "", "task id")
		fs.Parse(args[1:])

		tasks, err := a.tasks.ListTasks(ctx)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.ID == *id {
				if err := a.tasks.MarkCompleted(ctx, t); err != nil {
					return err
				}
				fmt.Println("tugas ditandai selesai")
				return a.printTasks(ctx)
			}
		}
		return fmt.Errorf("task %q not found", *id)

	case "rm":
		fs := flag.NewFlagSet("tasks rm", flag.ExitOnError)
		id := fs.String("id", "", "task id")
		fs.Parse(args[1:])

		if err := a.tasks.DeleteTask(ctx, *id); err != nil {
			return err
		}
		fmt.Println("tugas dihapus")
		return a.printTasks(ctx)

	default:
		return fmt.Errorf("unknown tasks subcommand %q", args[0])
	}
}

func (a *app) runProducts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing products subcommand")
	}

	switch args[0] {
	case "list":
		return a.printProducts(ctx)

	case "add":
		fs := flag.NewFlagSet("products add", flag.ExitOnError)
		name := fs.String("name", "", "product name")
		desc := fs.String("desc", "", "product description")
		price := fs.Float64("price", 0, "product price")
		category := fs.String("category", "", "product category")
		fs.Parse(args[1:])

		id, err := a.products.CreateProduct(ctx, productUC.CreateInput{
			Name:        *name,
			Description: *desc,
			Price:       *price,
			Category:    *category,
		})
		if err != nil {
			return err
		}
		fmt.Printf("produk dibuat: %s\n", id)
		return a.printProducts(ctx)

	case "rm":
		fs := flag.NewFlagSet("products rm", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(args[1:])

		if err := a.products.DeleteProduct(ctx, *id); err != nil {
			return err
		}
		fmt.Println("produk dihapus")
		return a.printProducts(ctx)

	default:
		return fmt.Errorf("unknown products subcommand %q", args[0])
	}
}

func (a *app) printTasks(ctx context.Context) error {
	tasks, err := a.tasks.ListTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("tidak ada tugas")
		return nil
	}
	for _, t := range tasks {
		marker := " "
		if t.IsCompleted() {
			marker = "x"
		}
		fmt.Printf("[%s] %s  %s  %s\n", marker, t.ID, t.Title, t.Date.Formatted())
	}
	return nil
}

func (a *app) printProducts(ctx context.Context) error {
	products, err := a.products.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("tidak ada produk")
		return nil
	}
	for _, p := range products {
		fmt.Printf("%s  %s  %.2f  %s\n", p.ID, p.Name, p.Price, p.Category)
	}
	return nil
}

func rest(args []string) []string {
	if len(args) < 2 {
		return nil
	}
	return args[1:]
}
