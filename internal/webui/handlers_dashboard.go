package webui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hamkharj/internal/api"
	"hamkharj/internal/format"
	"hamkharj/internal/report"
	"hamkharj/pkg/jalali"
)

// expenseForm holds the expense form's entered values so a failed submission
// re-renders with them intact.
type expenseForm struct {
	Amount       string
	Description  string
	JYear        int
	JMonth       int
	JDay         int
	Participants map[int64]bool
	Error        string
}

type paymentForm struct {
	ToUserID    int64
	Amount      string
	Description string
	JYear       int
	JMonth      int
	JDay        int
	Error       string
}

// dashboardData is everything the dashboard template renders for one Jalali
// month view.
type dashboardData struct {
	User   *api.User
	Year   int
	Month  int
	Scope  string
	Search string
	Page   int

	Users       []api.User
	Expenses    []api.Expense
	ExpensePage api.Pagination
	Payments    []api.Payment
	PendingMine []api.Expense
	Settlement  *api.SettlementReport

	Today       jalali.Date
	DaysInMonth int
	Years       []int

	ExpenseForm expenseForm
	PaymentForm paymentForm

	Flash     *Flash
	LoadError string
}

// Name resolves a user id against the month's user list for the template.
func (d dashboardData) Name(id int64) string {
	return api.NameOf(d.Users, id)
}

// IsMe reports whether the id is the signed-in user, for highlighting rows.
func (d dashboardData) IsMe(id int64) bool {
	return d.User != nil && d.User.ID == id
}

// buildDashboard assembles the month view, fanning the independent queries
// out concurrently. A 401 anywhere reports unauthorized=true; other failures
// land in LoadError and the page still renders.
func (s *Server) buildDashboard(c *gin.Context, year, month int) (dashboardData, bool) {
	today := jalali.Today()
	user := s.session.User()

	data := dashboardData{
		User:        user,
		Year:        year,
		Month:       month,
		Scope:       c.Query("scope"),
		Search:      c.Query("q"),
		Page:        intQuery(c, "page", 1),
		Today:       today,
		DaysInMonth: jalali.MonthLength(year, month),
		Years:       yearOptions(),
	}
	data.ExpenseForm = expenseForm{
		JYear:        today.Year,
		JMonth:       today.Month,
		JDay:         today.Day,
		Participants: map[int64]bool{},
	}
	if user != nil {
		data.ExpenseForm.Participants[user.ID] = true
	}
	data.PaymentForm = paymentForm{JYear: today.Year, JMonth: today.Month, JDay: today.Day}

	expenseQuery := api.ExpenseQuery{
		Year:   year,
		Month:  month,
		Scope:  data.Scope,
		Search: data.Search,
		Page:   data.Page,
	}
	paymentQuery := api.PaymentQuery{Year: year, Month: month, Scope: data.Scope}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		users, err := s.getUsers(ctx)
		data.Users = users
		return err
	})
	g.Go(func() error {
		page, err := s.getExpenses(ctx, expenseQuery)
		data.Expenses, data.ExpensePage = page.Items, page.Page
		return err
	})
	g.Go(func() error {
		page, err := s.getPayments(ctx, paymentQuery)
		data.Payments = page.Items
		return err
	})
	g.Go(func() error {
		rep, err := s.getSettlement(ctx, year, month, data.Scope)
		data.Settlement = rep
		return err
	})
	g.Go(func() error {
		pending, err := s.getPendingMyApprovals(ctx)
		data.PendingMine = pending
		return err
	})

	if err := g.Wait(); err != nil {
		if api.IsUnauthorized(err) {
			return data, true
		}
		s.logger.Error("Dashboard fetch failed",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(err))
		data.LoadError = apiErrorMessage(err, "دریافت اطلاعات از سرور ناموفق بود")
	}
	return data, false
}

func (s *Server) handleDashboard(c *gin.Context) {
	year, month := monthFromQuery(c)

	data, unauthorized := s.buildDashboard(c, year, month)
	if unauthorized {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	data.Flash = popFlash(c)

	s.render(c, http.StatusOK, "dashboard.html", data)
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	year, month := monthFromForm(c)

	form := expenseForm{
		Amount:       c.PostForm("amount"),
		Description:  c.PostForm("description"),
		JYear:        intForm(c, "jyear"),
		JMonth:       intForm(c, "jmonth"),
		JDay:         intForm(c, "jday"),
		Participants: map[int64]bool{},
	}
	participants := parseIDList(c.PostFormArray("participants"))
	for _, id := range participants {
		form.Participants[id] = true
	}

	amount := format.OnlyDigits(form.Amount)
	if amount != "" {
		// normalized grouping on re-render, like the form shows while typing
		form.Amount = format.GroupThousands(amount)
	}
	switch {
	case amount == "":
		form.Error = "مبلغ هزینه را وارد کنید"
	case !validJalaliDate(form.JYear, form.JMonth, form.JDay):
		form.Error = "تاریخ هزینه معتبر نیست"
	case len(participants) == 0:
		form.Error = "حداقل یک نفر را انتخاب کنید"
	}
	if form.Error != "" {
		s.rerenderExpenseForm(c, year, month, form)
		return
	}

	req := api.ExpenseCreate{
		Amount:             amount,
		Description:        form.Description,
		ExpenseDate:        jalali.ToGregorianISO(form.JYear, form.JMonth, form.JDay),
		ParticipantUserIDs: participants,
	}
	if _, err := s.client.CreateExpense(c.Request.Context(), req); err != nil {
		if api.IsUnauthorized(err) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		s.logger.Warn("Expense creation failed", zap.Error(err))
		form.Error = apiErrorMessage(err, "ثبت هزینه ناموفق بود")
		s.rerenderExpenseForm(c, year, month, form)
		return
	}

	s.invalidateExpenseData()
	setFlash(c, "success", "هزینه ثبت شد")
	c.Redirect(http.StatusFound, dashboardURL(year, month))
}

// rerenderExpenseForm shows the dashboard again with the rejected expense
// form filled in.
func (s *Server) rerenderExpenseForm(c *gin.Context, year, month int, form expenseForm) {
	data, unauthorized := s.buildDashboard(c, year, month)
	if unauthorized {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	data.ExpenseForm = form
	s.render(c, http.StatusBadRequest, "dashboard.html", data)
}

func (s *Server) handleApproveExpense(c *gin.Context) {
	year, month := monthFromForm(c)
	back := dashboardURL(year, month)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, back)
		return
	}

	if _, err := s.client.ApproveExpense(c.Request.Context(), id); err != nil {
		s.mutationFailed(c, "Expense approval failed", err, back, "تایید هزینه ناموفق بود")
		return
	}

	s.invalidateExpenseData()
	setFlash(c, "success", "هزینه تایید شد")
	c.Redirect(http.StatusFound, back)
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	year, month := monthFromForm(c)
	back := dashboardURL(year, month)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, back)
		return
	}

	if err := s.client.DeleteExpense(c.Request.Context(), id); err != nil {
		s.mutationFailed(c, "Expense deletion failed", err, back, "حذف هزینه ناموفق بود")
		return
	}

	s.invalidateExpenseData()
	setFlash(c, "success", "هزینه حذف شد")
	c.Redirect(http.StatusFound, back)
}

func (s *Server) handleCreatePayment(c *gin.Context) {
	year, month := monthFromForm(c)

	form := paymentForm{
		ToUserID:    int64(intForm(c, "to_user_id")),
		Amount:      c.PostForm("amount"),
		Description: c.PostForm("description"),
		JYear:       intForm(c, "jyear"),
		JMonth:      intForm(c, "jmonth"),
		JDay:        intForm(c, "jday"),
	}

	amount := format.OnlyDigits(form.Amount)
	if amount != "" {
		form.Amount = format.GroupThousands(amount)
	}
	switch {
	case form.ToUserID == 0:
		form.Error = "گیرنده پرداخت را انتخاب کنید"
	case amount == "":
		form.Error = "مبلغ پرداخت را وارد کنید"
	case !validJalaliDate(form.JYear, form.JMonth, form.JDay):
		form.Error = "تاریخ پرداخت معتبر نیست"
	}
	if form.Error != "" {
		s.rerenderPaymentForm(c, year, month, form)
		return
	}

	req := api.PaymentCreate{
		ToUserID:    form.ToUserID,
		Amount:      amount,
		Description: form.Description,
		PaymentDate: jalali.ToGregorianISO(form.JYear, form.JMonth, form.JDay),
	}
	if _, err := s.client.CreatePayment(c.Request.Context(), req); err != nil {
		if api.IsUnauthorized(err) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		s.logger.Warn("Payment creation failed", zap.Error(err))
		form.Error = apiErrorMessage(err, "ثبت پرداخت ناموفق بود")
		s.rerenderPaymentForm(c, year, month, form)
		return
	}

	s.invalidateExpenseData()
	setFlash(c, "success", "پرداخت ثبت شد")
	c.Redirect(http.StatusFound, dashboardURL(year, month))
}

func (s *Server) rerenderPaymentForm(c *gin.Context, year, month int, form paymentForm) {
	data, unauthorized := s.buildDashboard(c, year, month)
	if unauthorized {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	data.PaymentForm = form
	s.render(c, http.StatusBadRequest, "dashboard.html", data)
}

func (s *Server) handleExportSettlement(c *gin.Context) {
	year, month := monthFromQuery(c)

	var (
		rep   *api.SettlementReport
		users []api.User
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		rep, err = s.getSettlement(ctx, year, month, c.Query("scope"))
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.getUsers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.mutationFailed(c, "Settlement export fetch failed", err, dashboardURL(year, month), "دریافت گزارش تسویه ناموفق بود")
		return
	}

	payload, err := s.reports.Build(rep, users)
	if err != nil {
		s.logger.Error("Settlement workbook build failed",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(err))
		setFlash(c, "error", "ساخت فایل گزارش ناموفق بود")
		c.Redirect(http.StatusFound, dashboardURL(year, month))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(year, month)+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

// mutationFailed is the shared failure path for formless posts: 401 falls
// back to the login screen, anything else becomes a flash toast on the
// origin page.
func (s *Server) mutationFailed(c *gin.Context, logMsg string, err error, back, fallback string) {
	if api.IsUnauthorized(err) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	s.logger.Warn(logMsg, zap.Error(err))
	setFlash(c, "error", apiErrorMessage(err, fallback))
	c.Redirect(http.StatusFound, back)
}

// monthFromQuery reads year/month query params, falling back to the current
// Jalali month and clamping out-of-range values.
func monthFromQuery(c *gin.Context) (int, int) {
	curYear, curMonth := jalali.TodayYearMonth()
	return clampMonth(intQuery(c, "year", curYear), intQuery(c, "month", curMonth))
}

// monthFromForm reads the hidden year/month fields the dashboard forms carry
// so a post lands back on the month it came from.
func monthFromForm(c *gin.Context) (int, int) {
	year, month := intForm(c, "year"), intForm(c, "month")
	if year == 0 || month == 0 {
		return monthFromQuery(c)
	}
	return clampMonth(year, month)
}

func clampMonth(year, month int) (int, int) {
	curYear, curMonth := jalali.TodayYearMonth()
	if month < 1 || month > 12 {
		month = curMonth
	}
	if year < 1300 || year > 1500 {
		year = curYear
	}
	return year, month
}

func validJalaliDate(jy, jm, jd int) bool {
	return jy >= 1300 && jy <= 1500 && jm >= 1 && jm <= 12 && jd >= 1 && jd <= jalali.MonthLength(jy, jm)
}

func dashboardURL(year, month int) string {
	return "/dashboard?year=" + strconv.Itoa(year) + "&month=" + strconv.Itoa(month)
}

func yearOptions() []int {
	year, _ := jalali.TodayYearMonth()
	years := make([]int, 0, 4)
	for y := year + 1; y >= year-2; y-- {
		years = append(years, y)
	}
	return years
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func intForm(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.PostForm(name))
	return v
}

func parseIDList(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
